package repository

import (
	"context"

	"campusboard/internal/cache"
	"campusboard/internal/models"
	"campusboard/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID string) (*models.Post, error)
	List(ctx context.Context, minLikes, limit, offset int, viewerID string) ([]*models.Post, error)
	GetByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Post, error)
	GetScrappedByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	DeleteCascade(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidateBoardPages(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID string) (*models.Post, error) {
	var post models.Post

	var err error
	if viewerID == "" {
		// Anonymous reads have no per-viewer overlay, so they are cacheable.
		err = cache.CacheAside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
			return r.withDetails(r.db.WithContext(ctx), "").
				Where("posts.id = ?", id).
				First(&post).Error
		})
	} else {
		err = r.withDetails(r.db.WithContext(ctx), viewerID).
			Where("posts.id = ?", id).
			First(&post).Error
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, minLikes, limit, offset int, viewerID string) ([]*models.Post, error) {
	var posts []*models.Post
	fetch := func() error {
		q := r.withDetails(r.db.WithContext(ctx), viewerID)
		if minLikes > 0 {
			q = q.Where("posts.likes_count >= ?", minLikes)
		}
		return q.Order("posts.created_at DESC").
			Limit(limit).
			Offset(offset).
			Find(&posts).Error
	}

	// Anonymous pages carry no per-viewer overlay, so they are cacheable.
	// Any post mutation invalidates the whole page set.
	if viewerID == "" {
		err := cache.CacheAside(ctx, cache.BoardPageKey(minLikes, limit, offset), &posts, cache.BoardPageTTL, fetch)
		return posts, err
	}
	return posts, fetch()
}

func (r *postRepository) GetByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withDetails(r.db.WithContext(ctx), authorID).
		Where("posts.author_id = ?", authorID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) GetScrappedByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.withDetails(r.db.WithContext(ctx), userID).
		Joins("JOIN post_scraps ON post_scraps.post_id = posts.id AND post_scraps.user_id = ?", userID).
		Order("post_scraps.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// withDetails adds the author name, comment count and the viewer's like/scrap
// state to the query in a single SELECT. likes_count comes straight from the
// denormalized posts column.
func (r *postRepository) withDetails(db *gorm.DB, viewerID string) *gorm.DB {
	selectQuery := "posts.*, " +
		"COALESCE(NULLIF(users.nickname, ''), users.username) AS author_name, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

	base := db.Model(&models.Post{}).
		Joins("JOIN users ON users.id = posts.author_id")

	if viewerID != "" {
		return base.Select(selectQuery+
			", EXISTS(SELECT 1 FROM post_likes WHERE post_likes.post_id = posts.id AND post_likes.user_id = ?) AS liked"+
			", EXISTS(SELECT 1 FROM post_scraps WHERE post_scraps.post_id = posts.id AND post_scraps.user_id = ?) AS scrapped",
			viewerID, viewerID)
	}

	return base.Select(selectQuery + ", FALSE AS liked, FALSE AS scrapped")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"title":     post.Title,
			"content":   post.Content,
			"image_url": post.ImageURL,
		}).Error
	if err == nil {
		cache.InvalidatePost(ctx, post.ID)
		cache.InvalidateBoardPages(ctx)
	}
	return err
}

// DeleteCascade removes the post and everything hanging off it in one
// transaction: likes on its comments, the comments, likes and scraps on the
// post itself, then the post row. Partial deletion is never visible.
func (r *postRepository) DeleteCascade(ctx context.Context, id uint) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "DeleteCascade", "posts")
	defer span.End()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostScrap{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err == nil {
		cache.InvalidatePost(ctx, id)
		cache.InvalidateBoardPages(ctx)
	}
	return err
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
