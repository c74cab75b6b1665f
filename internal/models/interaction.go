package models

import "time"

// PostLike records that a user likes a post.
// The (UserID, PostID) pair is unique: liking is set membership, not counting.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:255;not null;uniqueIndex:idx_post_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike records that a user likes a comment.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:255;not null;uniqueIndex:idx_comment_like_user_comment" json:"user_id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_like_user_comment" json:"comment_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostScrap records that a user bookmarked a post.
type PostScrap struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"size:255;not null;uniqueIndex:idx_post_scrap_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_scrap_user_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
