package service

import (
	"context"
	"strings"
	"testing"

	"campusboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIdentityService_Sync_Defaults(t *testing.T) {
	t.Parallel()

	syncAndCapture := func(t *testing.T, claims PrincipalClaims) *models.User {
		t.Helper()
		var captured *models.User
		userRepo := noopUserRepo()
		userRepo.upsertFn = func(_ context.Context, u *models.User) error {
			captured = u
			return nil
		}
		userRepo.getByIDFn = func(_ context.Context, _ string) (*models.User, error) {
			return captured, nil
		}
		svc := NewIdentityService(userRepo)
		_, err := svc.Sync(context.Background(), claims)
		require.NoError(t, err)
		require.NotNil(t, captured)
		return captured
	}

	t.Run("full profile is taken as-is", func(t *testing.T) {
		t.Parallel()
		user := syncAndCapture(t, PrincipalClaims{
			ID: "usr_abcdef", Username: "jdoe", FirstName: "John", LastName: "Doe", Email: "j@campus.test",
		})
		assert.Equal(t, "jdoe", user.Username)
		assert.Equal(t, "John Doe", user.Nickname)
		assert.Equal(t, "j@campus.test", user.Email)
	})

	t.Run("username falls back to first name", func(t *testing.T) {
		t.Parallel()
		user := syncAndCapture(t, PrincipalClaims{ID: "usr_abcdef", FirstName: "John"})
		assert.Equal(t, "John", user.Username)
	})

	t.Run("username falls back to id prefix", func(t *testing.T) {
		t.Parallel()
		user := syncAndCapture(t, PrincipalClaims{ID: "usr_abcdefgh"})
		assert.Equal(t, "user_usr_abcd", user.Username)
	})

	t.Run("nickname trims a missing last name", func(t *testing.T) {
		t.Parallel()
		user := syncAndCapture(t, PrincipalClaims{ID: "usr_abcdef", FirstName: "John"})
		assert.Equal(t, "John", user.Nickname)
	})

	t.Run("nickname placeholder from id", func(t *testing.T) {
		t.Parallel()
		user := syncAndCapture(t, PrincipalClaims{ID: "usr_abcdef"})
		assert.Equal(t, "사용자_usr_a", user.Nickname)
	})

	t.Run("email placeholder", func(t *testing.T) {
		t.Parallel()
		user := syncAndCapture(t, PrincipalClaims{ID: "usr_abcdef"})
		assert.Equal(t, "unknown@example.com", user.Email)
	})

	t.Run("empty principal id is invalid", func(t *testing.T) {
		t.Parallel()
		svc := NewIdentityService(noopUserRepo())
		_, err := svc.Sync(context.Background(), PrincipalClaims{})
		assertValidationError(t, err)
	})
}

func TestIdentityService_Get_NotSynced(t *testing.T) {
	t.Parallel()

	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, _ string) (*models.User, error) {
		return nil, gorm.ErrRecordNotFound
	}
	svc := NewIdentityService(userRepo)

	_, err := svc.Get(context.Background(), "usr_unknown")
	assertNotSyncedError(t, err)
}

func TestIdentityService_UpdateNickname(t *testing.T) {
	t.Parallel()

	t.Run("valid nickname is stored", func(t *testing.T) {
		t.Parallel()
		var stored string
		userRepo := noopUserRepo()
		userRepo.updateNicknameFn = func(_ context.Context, _, nickname string) error {
			stored = nickname
			return nil
		}
		svc := NewIdentityService(userRepo)
		_, err := svc.UpdateNickname(context.Background(), "usr_1", "  board rat  ")
		require.NoError(t, err)
		assert.Equal(t, "board rat", stored, "nickname is trimmed before storing")
	})

	t.Run("empty nickname", func(t *testing.T) {
		t.Parallel()
		svc := NewIdentityService(noopUserRepo())
		_, err := svc.UpdateNickname(context.Background(), "usr_1", "   ")
		assertValidationError(t, err)
	})

	t.Run("nickname too long", func(t *testing.T) {
		t.Parallel()
		svc := NewIdentityService(noopUserRepo())
		_, err := svc.UpdateNickname(context.Background(), "usr_1", strings.Repeat("x", 51))
		assertValidationError(t, err)
	})

	t.Run("unknown user is not synced", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.updateNicknameFn = func(_ context.Context, _, _ string) error {
			return gorm.ErrRecordNotFound
		}
		svc := NewIdentityService(userRepo)
		_, err := svc.UpdateNickname(context.Background(), "usr_missing", "x")
		assertNotSyncedError(t, err)
	})
}
