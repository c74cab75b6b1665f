// Package models contains data structures for the application's domain models.
package models

import "time"

// User is the local record for an externally authenticated principal.
// The ID is the identity provider's user id, so rows are created by the
// identity sync paths rather than by registration.
type User struct {
	ID        string    `gorm:"primaryKey;size:255" json:"id"`
	Username  string    `gorm:"size:50;not null" json:"username"`
	Nickname  string    `gorm:"size:50" json:"nickname"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// DisplayName returns the name shown next to posts and comments:
// the nickname when the user has set one, the username otherwise.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Username
}
