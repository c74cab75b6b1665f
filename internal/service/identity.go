// Package service contains the application's business logic.
package service

import (
	"context"
	"strings"
	"time"

	"campusboard/internal/models"
	"campusboard/internal/repository"
)

// PrincipalClaims is the identity profile carried by a session token or a
// webhook event from the identity provider.
type PrincipalClaims struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Email     string
}

// IdentityService keeps local user records in step with the external
// identity provider. Records only come into existence through Sync, never
// through registration.
type IdentityService struct {
	userRepo repository.UserRepository
}

// NewIdentityService creates a new identity service
func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// Sync upserts the local record for the given principal. Missing profile
// fields get deterministic placeholders so the record is always displayable.
func (s *IdentityService) Sync(ctx context.Context, claims PrincipalClaims) (*models.User, error) {
	if claims.ID == "" {
		return nil, models.NewValidationError("Principal id is required")
	}

	now := time.Now()
	user := &models.User{
		ID:        claims.ID,
		Username:  defaultUsername(claims),
		Nickname:  defaultNickname(claims),
		Email:     defaultEmail(claims),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.Get(ctx, claims.ID)
}

// Get returns the local record, or USER_NOT_SYNCED when none exists yet.
func (s *IdentityService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewUserNotSyncedError()
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

// RequireSynced fails with USER_NOT_SYNCED unless a local record exists.
func (s *IdentityService) RequireSynced(ctx context.Context, id string) error {
	exists, err := s.userRepo.Exists(ctx, id)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !exists {
		return models.NewUserNotSyncedError()
	}
	return nil
}

// UpdateNickname sets the user's display nickname.
func (s *IdentityService) UpdateNickname(ctx context.Context, id, nickname string) (*models.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, models.NewValidationError("Nickname is required")
	}
	if len(nickname) > 50 {
		return nil, models.NewValidationError("Nickname too long (max 50 characters)")
	}

	if err := s.userRepo.UpdateNickname(ctx, id, nickname); err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewUserNotSyncedError()
		}
		return nil, models.NewInternalError(err)
	}
	return s.Get(ctx, id)
}

func defaultUsername(claims PrincipalClaims) string {
	if claims.Username != "" {
		return claims.Username
	}
	if claims.FirstName != "" {
		return claims.FirstName
	}
	return "user_" + shortID(claims.ID, 8)
}

func defaultNickname(claims PrincipalClaims) string {
	full := strings.TrimSpace(claims.FirstName + " " + claims.LastName)
	if full != "" {
		return full
	}
	return "사용자_" + shortID(claims.ID, 5)
}

func defaultEmail(claims PrincipalClaims) string {
	if claims.Email != "" {
		return claims.Email
	}
	return "unknown@example.com"
}

func shortID(id string, n int) string {
	if len(id) > n {
		return id[:n]
	}
	return id
}
