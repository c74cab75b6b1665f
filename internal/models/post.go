package models

import "time"

// Board tier names. Tiers are filter views over likes_count, not stored state.
const (
	TierNew  = "new"
	TierHot  = "hot"
	TierBest = "best"
)

// Post represents a board post.
// LikesCount is a denormalized counter maintained by the interaction
// repository; it must always equal the number of post_likes rows.
type Post struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	AuthorID   string    `gorm:"size:255;not null;index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"-"`
	ImageURL   string    `gorm:"size:255" json:"image_url,omitempty"`
	LikesCount int       `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// AuthorName is not persisted; selected as COALESCE(nickname, username).
	AuthorName string `gorm:"->;-:migration" json:"author"`
	// CommentsCount is not persisted; computed at query time.
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
	// Liked/Scrapped indicate the requesting user's membership state (computed).
	Liked    bool `gorm:"->;-:migration" json:"is_liked"`
	Scrapped bool `gorm:"->;-:migration" json:"is_scrapped"`

	// Tier is derived from LikesCount at read time.
	Tier string `gorm:"-" json:"category"`

	Comments []*Comment `gorm:"-" json:"comments,omitempty"`
}

// TierFor classifies a likes count against the configured thresholds.
func TierFor(likes, hotThreshold, bestThreshold int) string {
	switch {
	case likes >= bestThreshold:
		return TierBest
	case likes >= hotThreshold:
		return TierHot
	default:
		return TierNew
	}
}
