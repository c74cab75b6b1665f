package service

import (
	"context"
	"testing"

	"campusboard/internal/models"
	"campusboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	upsertFn         func(context.Context, *models.User) error
	getByIDFn        func(context.Context, string) (*models.User, error)
	existsFn         func(context.Context, string) (bool, error)
	updateNicknameFn func(context.Context, string, string) error
}

func (s *userRepoStub) Upsert(ctx context.Context, user *models.User) error {
	return s.upsertFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) Exists(ctx context.Context, id string) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *userRepoStub) UpdateNickname(ctx context.Context, id, nickname string) error {
	return s.updateNicknameFn(ctx, id, nickname)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		upsertFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: "jdoe"}, nil
		},
		existsFn:         func(_ context.Context, _ string) (bool, error) { return true, nil },
		updateNicknameFn: func(_ context.Context, _, _ string) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint, string) (*models.Post, error)
	listFn          func(context.Context, int, int, int, string) ([]*models.Post, error)
	getByAuthorFn   func(context.Context, string, int, int) ([]*models.Post, error)
	getScrappedFn   func(context.Context, string, int, int) ([]*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	deleteCascadeFn func(context.Context, uint) error
	existsFn        func(context.Context, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint, viewerID string) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, minLikes, limit, offset int, viewerID string) ([]*models.Post, error) {
	return s.listFn(ctx, minLikes, limit, offset, viewerID)
}
func (s *postRepoStub) GetByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Post, error) {
	return s.getByAuthorFn(ctx, authorID, limit, offset)
}
func (s *postRepoStub) GetScrappedByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Post, error) {
	return s.getScrappedFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint, _ string) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		listFn: func(_ context.Context, _, _, _ int, _ string) ([]*models.Post, error) {
			return nil, nil
		},
		getByAuthorFn: func(_ context.Context, _ string, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		getScrappedFn: func(_ context.Context, _ string, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		deleteCascadeFn: func(_ context.Context, _ uint) error { return nil },
		existsFn:        func(_ context.Context, _ uint) (bool, error) { return true, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint, string) ([]*models.Comment, error)
	existsFn     func(context.Context, uint) (bool, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, viewerID string) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, viewerID)
}
func (s *commentRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		listByPostFn: func(_ context.Context, _ uint, _ string) ([]*models.Comment, error) {
			return nil, nil
		},
		existsFn: func(_ context.Context, _ uint) (bool, error) { return true, nil },
	}
}

// interactionRepoStub is a stub for repository.InteractionRepository.
type interactionRepoStub struct {
	setPostLikeFn    func(context.Context, string, uint, bool) (*repository.ToggleResult, error)
	setCommentLikeFn func(context.Context, string, uint, bool) (*repository.ToggleResult, error)
	setPostScrapFn   func(context.Context, string, uint, bool) (*repository.ToggleResult, error)
}

func (s *interactionRepoStub) SetPostLike(ctx context.Context, userID string, postID uint, active bool) (*repository.ToggleResult, error) {
	return s.setPostLikeFn(ctx, userID, postID, active)
}
func (s *interactionRepoStub) SetCommentLike(ctx context.Context, userID string, commentID uint, active bool) (*repository.ToggleResult, error) {
	return s.setCommentLikeFn(ctx, userID, commentID, active)
}
func (s *interactionRepoStub) SetPostScrap(ctx context.Context, userID string, postID uint, active bool) (*repository.ToggleResult, error) {
	return s.setPostScrapFn(ctx, userID, postID, active)
}

func noopInteractionRepo() *interactionRepoStub {
	ok := func(_ context.Context, _ string, _ uint, active bool) (*repository.ToggleResult, error) {
		return &repository.ToggleResult{Changed: true, Active: active, Count: 1}, nil
	}
	return &interactionRepoStub{
		setPostLikeFn:    ok,
		setCommentLikeFn: ok,
		setPostScrapFn:   ok,
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func assertNotSyncedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUserNotSynced)
}
