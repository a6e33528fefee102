package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_ListPublished_EmptySearch(t *testing.T) {
	t.Parallel()

	// No list field wired: touching the database would panic the test.
	svc := NewPostService(&stubPostRepo{}, staffAuthorizer(false))

	page, err := svc.ListPublished(context.Background(), ListPostsInput{Query: "   ", PageSize: 6}, true)
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Zero(t, page.Total)
	assert.Equal(t, 6, page.PageSize)
}

func TestPostService_ListPublished_SearchFilters(t *testing.T) {
	t.Parallel()

	var got repository.PostFilters
	repo := &stubPostRepo{
		list: func(ctx context.Context, f repository.PostFilters) ([]*models.Post, int64, error) {
			got = f
			return []*models.Post{{ID: 1}}, 25, nil
		},
	}
	svc := NewPostService(repo, staffAuthorizer(false))

	page, err := svc.ListPublished(context.Background(), ListPostsInput{
		Query:    "  kubernetes  ",
		Page:     2,
		PageSize: 10,
	}, true)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPublished, got.Status)
	assert.Equal(t, "kubernetes", got.Query)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, 10, got.Offset)
	assert.Equal(t, int64(25), page.Total)
	assert.Equal(t, 3, page.TotalPages)
}

func TestPostService_GetByPermalink(t *testing.T) {
	t.Parallel()

	t.Run("records view", func(t *testing.T) {
		t.Parallel()
		repo := &stubPostRepo{
			getBySlug: func(ctx context.Context, day, slug string) (*models.Post, error) {
				assert.Equal(t, "2026-03-07", day)
				assert.Equal(t, "hello-world", slug)
				return &models.Post{ID: 9, Slug: slug, ViewCount: 41}, nil
			},
			incrementViewCount: func(ctx context.Context, id uint) error {
				assert.Equal(t, uint(9), id)
				return nil
			},
		}
		svc := NewPostService(repo, staffAuthorizer(false))

		post, err := svc.GetByPermalink(context.Background(), 2026, 3, 7, "hello-world")
		require.NoError(t, err)
		assert.Equal(t, uint(42), post.ViewCount)
	})

	t.Run("view failure does not fail the read", func(t *testing.T) {
		t.Parallel()
		repo := &stubPostRepo{
			getBySlug: func(ctx context.Context, day, slug string) (*models.Post, error) {
				return &models.Post{ID: 9, ViewCount: 41}, nil
			},
			incrementViewCount: func(ctx context.Context, id uint) error {
				return errors.New("connection reset")
			},
		}
		svc := NewPostService(repo, staffAuthorizer(false))

		post, err := svc.GetByPermalink(context.Background(), 2026, 3, 7, "hello-world")
		require.NoError(t, err)
		assert.Equal(t, uint(41), post.ViewCount)
	})
}

func TestPostService_GetByID_HidesDrafts(t *testing.T) {
	t.Parallel()

	owner := uint(5)
	repo := &stubPostRepo{
		getByID: func(ctx context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: &owner, Status: models.PostStatusDraft}, nil
		},
	}
	svc := NewPostService(repo, staffAuthorizer(false))

	_, err := svc.GetByID(context.Background(), 1, 6)
	assertAppErrorCode(t, err, models.CodeNotFound)

	post, err := svc.GetByID(context.Background(), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, post.Status)
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(&stubPostRepo{}, staffAuthorizer(false))

		_, err := svc.CreatePost(context.Background(), CreatePostInput{AuthorID: 1})
		assertFieldError(t, err, "title")
		assertFieldError(t, err, "content")
	})

	t.Run("slugifies title and publishes", func(t *testing.T) {
		t.Parallel()
		var created *models.Post
		repo := &stubPostRepo{
			slugExists: func(ctx context.Context, day, slug string, excludeID uint) (bool, error) {
				return false, nil
			},
			create: func(ctx context.Context, post *models.Post) error {
				post.ID = 11
				created = post
				return nil
			},
			getByID: func(ctx context.Context, id uint) (*models.Post, error) {
				return created, nil
			},
		}
		svc := NewPostService(repo, staffAuthorizer(false))

		post, err := svc.CreatePost(context.Background(), CreatePostInput{
			AuthorID: 1,
			Title:    "Go 1.26: What's New?",
			Content:  "body",
			Publish:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, "go-1-26-what-s-new", post.Slug)
		assert.Equal(t, models.PostStatusPublished, post.Status)
		assert.False(t, post.PublishedAt.IsZero())
	})

	t.Run("dedupes slug within the day", func(t *testing.T) {
		t.Parallel()
		taken := map[string]bool{"hello": true, "hello-2": true}
		var created *models.Post
		repo := &stubPostRepo{
			slugExists: func(ctx context.Context, day, slug string, excludeID uint) (bool, error) {
				return taken[slug], nil
			},
			create: func(ctx context.Context, post *models.Post) error {
				created = post
				return nil
			},
			getByID: func(ctx context.Context, id uint) (*models.Post, error) {
				return created, nil
			},
		}
		svc := NewPostService(repo, staffAuthorizer(false))

		post, err := svc.CreatePost(context.Background(), CreatePostInput{
			AuthorID: 1,
			Title:    "Hello",
			Content:  "body",
			Publish:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, "hello-3", post.Slug)
	})

	t.Run("rejects reserved slug", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(&stubPostRepo{}, staffAuthorizer(false))

		_, err := svc.CreatePost(context.Background(), CreatePostInput{
			AuthorID: 1,
			Title:    "Admin",
			Content:  "body",
			Slug:     "admin",
		})
		assertAppErrorCode(t, err, models.CodeValidation)
	})
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()
		owner := uint(5)
		repo := &stubPostRepo{
			getByID: func(ctx context.Context, id uint) (*models.Post, error) {
				return &models.Post{ID: id, AuthorID: &owner, Title: "t", Content: "c"}, nil
			},
		}
		svc := NewPostService(repo, staffAuthorizer(false))

		title := "new title"
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{PostID: 1, ActorID: 6, Title: &title})
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("republishing keeps the original date", func(t *testing.T) {
		t.Parallel()
		owner := uint(5)
		published := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
		stored := &models.Post{
			ID:          1,
			AuthorID:    &owner,
			Title:       "t",
			Content:     "c",
			Status:      models.PostStatusDraft,
			PublishedAt: published,
		}
		repo := &stubPostRepo{
			getByID: func(ctx context.Context, id uint) (*models.Post, error) { return stored, nil },
			update:  func(ctx context.Context, post *models.Post) error { return nil },
		}
		svc := NewPostService(repo, staffAuthorizer(false))

		publish := true
		post, err := svc.UpdatePost(context.Background(), UpdatePostInput{PostID: 1, ActorID: 5, Publish: &publish})
		require.NoError(t, err)
		assert.Equal(t, models.PostStatusPublished, post.Status)
		assert.Equal(t, published, post.PublishedAt)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	owner := uint(5)
	deleted := false
	repo := &stubPostRepo{
		getByID: func(ctx context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, AuthorID: &owner}, nil
		},
		del: func(ctx context.Context, id uint) error {
			deleted = true
			return nil
		},
	}
	svc := NewPostService(repo, staffAuthorizer(false))

	err := svc.DeletePost(context.Background(), 1, 99)
	assertAppErrorCode(t, err, models.CodeForbidden)
	assert.False(t, deleted)

	require.NoError(t, svc.DeletePost(context.Background(), 1, 5))
	assert.True(t, deleted)
}
