package service

import (
	"context"

	"campusboard/internal/middleware"
	"campusboard/internal/models"
	"campusboard/internal/observability"
	"campusboard/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// Interaction action literals accepted on the wire.
const (
	ActionLike    = "like"
	ActionUnlike  = "unlike"
	ActionScrap   = "scrap"
	ActionUnscrap = "unscrap"
)

// InteractionService implements like and scrap transitions. Every operation
// is idempotent: requesting a state the user is already in succeeds without
// touching the counters.
type InteractionService struct {
	interactionRepo repository.InteractionRepository
	userRepo        repository.UserRepository
}

// NewInteractionService creates a new interaction service
func NewInteractionService(
	interactionRepo repository.InteractionRepository,
	userRepo repository.UserRepository,
) *InteractionService {
	return &InteractionService{
		interactionRepo: interactionRepo,
		userRepo:        userRepo,
	}
}

// PostLike applies a "like" or "unlike" action to a post.
func (s *InteractionService) PostLike(ctx context.Context, userID string, postID uint, action string) (*repository.ToggleResult, error) {
	active, err := parseLikeAction(action)
	if err != nil {
		return nil, err
	}
	if err := s.requireSynced(ctx, userID); err != nil {
		return nil, err
	}

	span, ctx := observability.NewSpan(ctx, "interaction.post_like")
	defer span.End()
	span.AddAttributes(
		attribute.Int("post.id", int(postID)),
		attribute.String("interaction.action", action),
	)

	result, err := s.interactionRepo.SetPostLike(ctx, userID, postID, active)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}

	recordToggle("post_like", action, result)
	return result, nil
}

// CommentLike applies a "like" or "unlike" action to a comment.
func (s *InteractionService) CommentLike(ctx context.Context, userID string, commentID uint, action string) (*repository.ToggleResult, error) {
	active, err := parseLikeAction(action)
	if err != nil {
		return nil, err
	}
	if err := s.requireSynced(ctx, userID); err != nil {
		return nil, err
	}

	span, ctx := observability.NewSpan(ctx, "interaction.comment_like")
	defer span.End()
	span.AddAttributes(
		attribute.Int("comment.id", int(commentID)),
		attribute.String("interaction.action", action),
	)

	result, err := s.interactionRepo.SetCommentLike(ctx, userID, commentID, active)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, models.NewInternalError(err)
	}

	recordToggle("comment_like", action, result)
	return result, nil
}

// PostScrap applies a "scrap" or "unscrap" action to a post.
func (s *InteractionService) PostScrap(ctx context.Context, userID string, postID uint, action string) (*repository.ToggleResult, error) {
	var active bool
	switch action {
	case ActionScrap:
		active = true
	case ActionUnscrap:
		active = false
	default:
		return nil, models.NewValidationError("Action must be 'scrap' or 'unscrap'")
	}
	if err := s.requireSynced(ctx, userID); err != nil {
		return nil, err
	}

	span, ctx := observability.NewSpan(ctx, "interaction.post_scrap")
	defer span.End()
	span.AddAttributes(
		attribute.Int("post.id", int(postID)),
		attribute.String("interaction.action", action),
	)

	result, err := s.interactionRepo.SetPostScrap(ctx, userID, postID, active)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, models.NewInternalError(err)
	}

	recordToggle("post_scrap", action, result)
	return result, nil
}

func (s *InteractionService) requireSynced(ctx context.Context, userID string) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !exists {
		return models.NewUserNotSyncedError()
	}
	return nil
}

func parseLikeAction(action string) (bool, error) {
	switch action {
	case ActionLike:
		return true, nil
	case ActionUnlike:
		return false, nil
	default:
		return false, models.NewValidationError("Action must be 'like' or 'unlike'")
	}
}

func recordToggle(kind, action string, result *repository.ToggleResult) {
	outcome := "noop"
	if result.Changed {
		outcome = "changed"
	}
	middleware.InteractionToggles.WithLabelValues(kind, action, outcome).Inc()
}
