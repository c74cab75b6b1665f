package models

import "time"

// Comment is a comment on a post. Comments have no edit or delete path;
// they only disappear when the parent post is deleted.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   string    `gorm:"size:255;not null;index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"-"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	LikesCount int       `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// AuthorName is not persisted; selected as COALESCE(nickname, username).
	AuthorName string `gorm:"->;-:migration" json:"author"`
	// Liked indicates whether the requesting user liked this comment (computed).
	Liked bool `gorm:"->;-:migration" json:"is_liked"`
}
