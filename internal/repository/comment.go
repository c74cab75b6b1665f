package repository

import (
	"context"

	"campusboard/internal/cache"
	"campusboard/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, viewerID string) ([]*models.Comment, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// commentRepository implements CommentRepository
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Create(comment).Error
	if err == nil {
		// Board pages embed the comment count, so they go stale too.
		cache.InvalidatePost(ctx, comment.PostID)
		cache.InvalidateBoardPages(ctx)
	}
	return err
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns the post's comments oldest-first with the author name
// and the viewer's like state resolved in the same query.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, viewerID string) ([]*models.Comment, error) {
	var comments []*models.Comment

	fetch := func() error {
		selectQuery := "comments.*, " +
			"COALESCE(NULLIF(users.nickname, ''), users.username) AS author_name"

		q := r.db.WithContext(ctx).
			Model(&models.Comment{}).
			Joins("JOIN users ON users.id = comments.author_id").
			Where("comments.post_id = ?", postID)

		if viewerID != "" {
			q = q.Select(selectQuery+
				", EXISTS(SELECT 1 FROM comment_likes WHERE comment_likes.comment_id = comments.id AND comment_likes.user_id = ?) AS liked",
				viewerID)
		} else {
			q = q.Select(selectQuery + ", FALSE AS liked")
		}

		return q.Order("comments.created_at ASC").Find(&comments).Error
	}

	// Anonymous comment lists carry no like overlay, so they are cacheable.
	if viewerID == "" {
		err := cache.CacheAside(ctx, cache.PostCommentsKey(postID), &comments, cache.PostCommentsTTL, fetch)
		return comments, err
	}
	return comments, fetch()
}

func (r *commentRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
