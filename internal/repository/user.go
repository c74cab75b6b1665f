// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"campusboard/internal/cache"
	"campusboard/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateNickname(ctx context.Context, id, nickname string) error
}

// userRepository implements UserRepository
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert inserts the user or refreshes it in place. The username is written
// on first insert only and never changes afterwards. A nickname the user has
// already set locally wins over the one pushed by the identity provider, so
// re-syncs never clobber a customized nickname. Single statement keeps
// concurrent session-sync and webhook deliveries race-free.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO users (id, username, nickname, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   email = excluded.email,
		   nickname = COALESCE(NULLIF(users.nickname, ''), excluded.nickname),
		   updated_at = excluded.updated_at`,
		user.ID, user.Username, user.Nickname, user.Email, user.CreatedAt, user.UpdatedAt,
	).Error
	if err == nil {
		cache.InvalidateUser(ctx, user.ID)
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := cache.CacheAside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		return r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UpdateNickname(ctx context.Context, id, nickname string) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("nickname", nickname)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateUser(ctx, id)
	r.invalidateAuthoredContent(ctx, id)
	return nil
}

// invalidateAuthoredContent drops cached payloads that embed the user's
// display name: their own posts, the comment lists of posts they commented
// on, and the board pages. Without this a rename would show the old author
// name on anonymous reads until the TTLs ran out.
func (r *userRepository) invalidateAuthoredContent(ctx context.Context, userID string) {
	var postIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ?", userID).
		Pluck("id", &postIDs).Error; err == nil {
		for _, id := range postIDs {
			cache.InvalidatePost(ctx, id)
		}
	}

	var commentedPostIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Distinct().
		Where("author_id = ?", userID).
		Pluck("post_id", &commentedPostIDs).Error; err == nil {
		for _, id := range commentedPostIDs {
			cache.InvalidatePost(ctx, id)
		}
	}

	cache.InvalidateBoardPages(ctx)
}

// IsNotFound reports whether err is the record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
