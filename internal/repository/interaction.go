package repository

import (
	"context"
	"errors"

	"campusboard/internal/cache"
	"campusboard/internal/models"
	"campusboard/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleResult reports the outcome of an idempotent like/scrap transition.
type ToggleResult struct {
	// Changed is false when the target was already in the requested state.
	Changed bool
	// Active is the state after the operation.
	Active bool
	// Count is the target's like (or scrap) count after the operation.
	Count int
}

// InteractionRepository maintains the per-user like and scrap sets together
// with the denormalized counters on their targets. Every transition runs in
// its own transaction so a membership row and its counter never diverge.
type InteractionRepository interface {
	SetPostLike(ctx context.Context, userID string, postID uint, active bool) (*ToggleResult, error)
	SetCommentLike(ctx context.Context, userID string, commentID uint, active bool) (*ToggleResult, error)
	SetPostScrap(ctx context.Context, userID string, postID uint, active bool) (*ToggleResult, error)
}

type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new interaction repository
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation. A raced duplicate insert lands here when two requests hit the
// membership index on different connections.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *interactionRepository) SetPostLike(ctx context.Context, userID string, postID uint, active bool) (*ToggleResult, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "SetPostLike", "post_likes")
	defer span.End()

	result := &ToggleResult{Active: active}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := targetExists(tx, &models.Post{}, postID); err != nil {
			return err
		}

		if active {
			changed, err := insertMembership(tx, &models.PostLike{UserID: userID, PostID: postID})
			if err != nil {
				return err
			}
			result.Changed = changed
			if changed {
				if err := tx.Model(&models.Post{}).
					Where("id = ?", postID).
					UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
					return err
				}
			}
		} else {
			res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.PostLike{})
			if res.Error != nil {
				return res.Error
			}
			result.Changed = res.RowsAffected == 1
			if result.Changed {
				// The count guard keeps a stale counter from going negative.
				if err := tx.Model(&models.Post{}).
					Where("id = ? AND likes_count > 0", postID).
					UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&models.Post{}).
			Select("likes_count").
			Where("id = ?", postID).
			Scan(&result.Count).Error
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		// Board pages embed likes_count, so they must drop with the post.
		cache.InvalidatePost(ctx, postID)
		cache.InvalidateBoardPages(ctx)
	}
	return result, nil
}

func (r *interactionRepository) SetCommentLike(ctx context.Context, userID string, commentID uint, active bool) (*ToggleResult, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "SetCommentLike", "comment_likes")
	defer span.End()

	result := &ToggleResult{Active: active}

	var postID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Select("id", "post_id").First(&comment, commentID).Error; err != nil {
			return err
		}
		postID = comment.PostID

		if active {
			changed, err := insertMembership(tx, &models.CommentLike{UserID: userID, CommentID: commentID})
			if err != nil {
				return err
			}
			result.Changed = changed
			if changed {
				if err := tx.Model(&models.Comment{}).
					Where("id = ?", commentID).
					UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
					return err
				}
			}
		} else {
			res := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).Delete(&models.CommentLike{})
			if res.Error != nil {
				return res.Error
			}
			result.Changed = res.RowsAffected == 1
			if result.Changed {
				if err := tx.Model(&models.Comment{}).
					Where("id = ? AND likes_count > 0", commentID).
					UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error; err != nil {
					return err
				}
			}
		}

		return tx.Model(&models.Comment{}).
			Select("likes_count").
			Where("id = ?", commentID).
			Scan(&result.Count).Error
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		cache.InvalidatePost(ctx, postID)
	}
	return result, nil
}

func (r *interactionRepository) SetPostScrap(ctx context.Context, userID string, postID uint, active bool) (*ToggleResult, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "SetPostScrap", "post_scraps")
	defer span.End()

	result := &ToggleResult{Active: active}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := targetExists(tx, &models.Post{}, postID); err != nil {
			return err
		}

		if active {
			changed, err := insertMembership(tx, &models.PostScrap{UserID: userID, PostID: postID})
			if err != nil {
				return err
			}
			result.Changed = changed
		} else {
			res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.PostScrap{})
			if res.Error != nil {
				return res.Error
			}
			result.Changed = res.RowsAffected == 1
		}

		// Scraps carry no denormalized counter; count the rows directly.
		var count int64
		if err := tx.Model(&models.PostScrap{}).
			Where("post_id = ?", postID).
			Count(&count).Error; err != nil {
			return err
		}
		result.Count = int(count)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		cache.InvalidatePost(ctx, postID)
	}
	return result, nil
}

// insertMembership inserts the membership row, treating "already present" as
// a no-op rather than an error.
func insertMembership(tx *gorm.DB, row interface{}) (bool, error) {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func targetExists(tx *gorm.DB, model interface{}, id uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
