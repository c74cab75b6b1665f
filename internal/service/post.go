package service

import (
	"context"
	"log/slog"
	"strings"

	"campusboard/internal/models"
	"campusboard/internal/observability"
	"campusboard/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen   = 255
	maxContentLen = 50000
)

// PostService implements board post operations.
type PostService struct {
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	userRepo      repository.UserRepository
	hotThreshold  int
	bestThreshold int
}

type CreatePostInput struct {
	AuthorID string
	Title    string
	Content  string
	ImageURL string
}

type UpdatePostInput struct {
	UserID  string
	PostID  uint
	Title   string
	Content string
	// ImageURL is nil when the request omitted the field, which keeps the
	// stored image. An explicit empty string removes it.
	ImageURL *string
}

// NewPostService creates a new post service
func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	hotThreshold, bestThreshold int,
) *PostService {
	return &PostService{
		postRepo:      postRepo,
		commentRepo:   commentRepo,
		userRepo:      userRepo,
		hotThreshold:  hotThreshold,
		bestThreshold: bestThreshold,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := s.requireSynced(ctx, in.AuthorID); err != nil {
		return nil, err
	}
	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		AuthorID: in.AuthorID,
		ImageURL: in.ImageURL,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.GetPost(ctx, post.ID, in.AuthorID)
}

// GetPost returns the post detail with its comments attached.
func (s *PostService) GetPost(ctx context.Context, id uint, viewerID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}

	comments, err := s.commentRepo.ListByPost(ctx, id, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	post.Comments = comments
	s.classify(post)
	return post, nil
}

// ListPosts returns a page of the requested board. "new" is the whole board;
// "hot" and "best" are threshold filters over the like counter.
func (s *PostService) ListPosts(ctx context.Context, category string, limit, offset int, viewerID string) ([]*models.Post, error) {
	var minLikes int
	switch category {
	case "", models.TierNew:
		minLikes = 0
	case models.TierHot:
		minLikes = s.hotThreshold
	case models.TierBest:
		minLikes = s.bestThreshold
	default:
		return nil, models.NewValidationError("Unknown category: " + category)
	}

	posts, err := s.postRepo.List(ctx, minLikes, limit, offset, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range posts {
		s.classify(p)
	}
	return posts, nil
}

// MyPosts returns the user's own posts, newest first.
func (s *PostService) MyPosts(ctx context.Context, userID string, limit, offset int) ([]*models.Post, error) {
	if err := s.requireSynced(ctx, userID); err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetByAuthor(ctx, userID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range posts {
		s.classify(p)
	}
	return posts, nil
}

// MyScraps returns the posts the user has scrapped, most recently scrapped first.
func (s *PostService) MyScraps(ctx context.Context, userID string, limit, offset int) ([]*models.Post, error) {
	if err := s.requireSynced(ctx, userID); err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetScrappedByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range posts {
		s.classify(p)
	}
	return posts, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, "")
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, models.NewInternalError(err)
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}
	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = in.Content
	if in.ImageURL != nil {
		post.ImageURL = *in.ImageURL
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.GetPost(ctx, in.PostID, in.UserID)
}

// DeletePost removes the post together with its comments, likes and scraps.
func (s *PostService) DeletePost(ctx context.Context, userID string, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, "")
	if err != nil {
		if repository.IsNotFound(err) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}
	if post.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	span, ctx := observability.NewSpan(ctx, "post.delete_cascade")
	defer span.End()
	span.AddAttributes(attribute.Int("post.id", int(postID)))

	if err := s.postRepo.DeleteCascade(ctx, postID); err != nil {
		span.SetError(err)
		if repository.IsNotFound(err) {
			return models.NewNotFoundError("Post", postID)
		}
		return models.NewInternalError(err)
	}

	slog.InfoContext(ctx, "post cascade deleted",
		slog.Uint64("post_id", uint64(postID)),
		slog.String("trace_id", span.TraceID()))
	return nil
}

func (s *PostService) requireSynced(ctx context.Context, userID string) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !exists {
		return models.NewUserNotSyncedError()
	}
	return nil
}

func (s *PostService) classify(post *models.Post) {
	post.Tier = models.TierFor(post.LikesCount, s.hotThreshold, s.bestThreshold)
}

func validatePostFields(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 255 characters)")
	}
	if content == "" {
		return models.NewValidationError("Content is required")
	}
	if len(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}
