package service

import (
	"context"
	"strings"
	"testing"

	"campusboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(postRepo *postRepoStub, commentRepo *commentRepoStub, userRepo *userRepoStub) *PostService {
	return NewPostService(postRepo, commentRepo, userRepo, 10, 100)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := newPostService(noopPostRepo(), noopCommentRepo(), noopUserRepo())
	ctx := context.Background()

	t.Run("empty title", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: "usr_1", Content: "body"})
		assertValidationError(t, err)
	})

	t.Run("title too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{
			AuthorID: "usr_1",
			Title:    strings.Repeat("x", 256),
			Content:  "body",
		})
		assertValidationError(t, err)
	})

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: "usr_1", Title: "title"})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{
			AuthorID: "usr_1",
			Title:    "title",
			Content:  strings.Repeat("x", 50001),
		})
		assertValidationError(t, err)
	})

	t.Run("unsynced author", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }
		svc2 := newPostService(noopPostRepo(), noopCommentRepo(), userRepo)
		_, err := svc2.CreatePost(ctx, CreatePostInput{AuthorID: "usr_1", Title: "t", Content: "c"})
		assertNotSyncedError(t, err)
	})
}

func TestPostService_CreatePost_Success(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = 7
		return nil
	}
	postRepo.getByIDFn = func(_ context.Context, id uint, viewerID string) (*models.Post, error) {
		return &models.Post{ID: id, Title: "hello", AuthorID: viewerID, LikesCount: 0}, nil
	}

	svc := newPostService(postRepo, noopCommentRepo(), noopUserRepo())
	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		AuthorID: "usr_1",
		Title:    "  hello  ",
		Content:  "body",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), post.ID)
	assert.Equal(t, models.TierNew, post.Tier)
}

func TestPostService_ListPosts_Categories(t *testing.T) {
	t.Parallel()

	var gotMinLikes int
	postRepo := noopPostRepo()
	postRepo.listFn = func(_ context.Context, minLikes, _, _ int, _ string) ([]*models.Post, error) {
		gotMinLikes = minLikes
		return []*models.Post{
			{ID: 1, LikesCount: 5},
			{ID: 2, LikesCount: 50},
			{ID: 3, LikesCount: 500},
		}, nil
	}
	svc := newPostService(postRepo, noopCommentRepo(), noopUserRepo())
	ctx := context.Background()

	t.Run("default board passes no filter", func(t *testing.T) {
		posts, err := svc.ListPosts(ctx, "", 20, 0, "")
		require.NoError(t, err)
		assert.Equal(t, 0, gotMinLikes)
		require.Len(t, posts, 3)
		assert.Equal(t, models.TierNew, posts[0].Tier)
		assert.Equal(t, models.TierHot, posts[1].Tier)
		assert.Equal(t, models.TierBest, posts[2].Tier)
	})

	t.Run("hot board filters at the hot threshold", func(t *testing.T) {
		_, err := svc.ListPosts(ctx, models.TierHot, 20, 0, "")
		require.NoError(t, err)
		assert.Equal(t, 10, gotMinLikes)
	})

	t.Run("best board filters at the best threshold", func(t *testing.T) {
		_, err := svc.ListPosts(ctx, models.TierBest, 20, 0, "")
		require.NoError(t, err)
		assert.Equal(t, 100, gotMinLikes)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := svc.ListPosts(ctx, "trending", 20, 0, "")
		assertValidationError(t, err)
	})
}

func TestPostService_GetPost_AttachesComments(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.listByPostFn = func(_ context.Context, postID uint, _ string) ([]*models.Comment, error) {
		return []*models.Comment{{ID: 1, PostID: postID}, {ID: 2, PostID: postID}}, nil
	}
	svc := newPostService(noopPostRepo(), commentRepo, noopUserRepo())

	post, err := svc.GetPost(context.Background(), 5, "usr_1")
	require.NoError(t, err)
	assert.Len(t, post.Comments, 2)
}

func TestPostService_UpdatePost_Ownership(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getByIDFn = func(_ context.Context, id uint, _ string) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: "usr_owner", Title: "t", Content: "c"}, nil
	}
	svc := newPostService(postRepo, noopCommentRepo(), noopUserRepo())

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID: "usr_other", PostID: 1, Title: "new", Content: "new",
	})
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func TestPostService_UpdatePost_ImageHandling(t *testing.T) {
	t.Parallel()

	newSvc := func(saved **models.Post) *PostService {
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint, _ string) (*models.Post, error) {
			return &models.Post{
				ID: id, AuthorID: "usr_owner", Title: "t", Content: "c",
				ImageURL: "https://img.campus.test/x.png",
			}, nil
		}
		postRepo.updateFn = func(_ context.Context, post *models.Post) error {
			*saved = post
			return nil
		}
		return newPostService(postRepo, noopCommentRepo(), noopUserRepo())
	}

	t.Run("omitted image keeps the stored one", func(t *testing.T) {
		t.Parallel()
		var saved *models.Post
		svc := newSvc(&saved)

		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: "usr_owner", PostID: 1, Title: "new", Content: "new",
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "https://img.campus.test/x.png", saved.ImageURL,
			"a text-only edit must not erase the image")
	})

	t.Run("explicit empty image removes it", func(t *testing.T) {
		t.Parallel()
		var saved *models.Post
		svc := newSvc(&saved)

		empty := ""
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: "usr_owner", PostID: 1, Title: "new", Content: "new", ImageURL: &empty,
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Empty(t, saved.ImageURL)
	})

	t.Run("new image replaces the stored one", func(t *testing.T) {
		t.Parallel()
		var saved *models.Post
		svc := newSvc(&saved)

		next := "https://img.campus.test/y.png"
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			UserID: "usr_owner", PostID: 1, Title: "new", Content: "new", ImageURL: &next,
		})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, next, saved.ImageURL)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	t.Run("non-owner cannot delete", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint, _ string) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: "usr_owner"}, nil
		}
		svc := newPostService(postRepo, noopCommentRepo(), noopUserRepo())
		err := svc.DeletePost(context.Background(), "usr_other", 1)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("owner delete cascades", func(t *testing.T) {
		t.Parallel()
		var cascaded uint
		postRepo := noopPostRepo()
		postRepo.getByIDFn = func(_ context.Context, id uint, _ string) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: "usr_owner"}, nil
		}
		postRepo.deleteCascadeFn = func(_ context.Context, id uint) error {
			cascaded = id
			return nil
		}
		svc := newPostService(postRepo, noopCommentRepo(), noopUserRepo())
		require.NoError(t, svc.DeletePost(context.Background(), "usr_owner", 9))
		assert.Equal(t, uint(9), cascaded)
	})
}
