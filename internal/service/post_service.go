package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

const (
	titleMaxLen   = 200
	excerptMaxLen = 500
	relatedLimit  = 3

	homeLatestLimit  = 6
	homePopularLimit = 4
)

// PostService implements the content listing, permalink, and authoring logic.
type PostService struct {
	postRepo repository.PostRepository
	authz    *Authorizer
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, authz *Authorizer) *PostService {
	return &PostService{postRepo: postRepo, authz: authz}
}

// ListPostsInput describes one page of a filtered listing. Filters combine
// with AND; Query is the free-text search term.
type ListPostsInput struct {
	CategorySlug   string
	TagSlug        string
	AuthorUsername string
	Query          string
	Sort           string
	Page           int
	PageSize       int
}

// PostPage is one page of results plus the total for pagination controls.
type PostPage struct {
	Posts      []*models.Post `json:"posts"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// ListPublished returns a page of published posts matching the filters.
// An empty search submission returns an empty page without touching the
// database. Unfiltered pages are served through the cache.
func (s *PostService) ListPublished(ctx context.Context, in ListPostsInput, searched bool) (*PostPage, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.PageSize < 1 {
		in.PageSize = 10
	}

	if searched && strings.TrimSpace(in.Query) == "" {
		return &PostPage{Posts: []*models.Post{}, Page: in.Page, PageSize: in.PageSize}, nil
	}

	filters := repository.PostFilters{
		Status:         models.PostStatusPublished,
		CategorySlug:   in.CategorySlug,
		TagSlug:        in.TagSlug,
		AuthorUsername: in.AuthorUsername,
		Query:          strings.TrimSpace(in.Query),
		Sort:           in.Sort,
		Limit:          in.PageSize,
		Offset:         (in.Page - 1) * in.PageSize,
	}

	page := &PostPage{Page: in.Page, PageSize: in.PageSize}

	fetch := func() error {
		posts, total, err := s.postRepo.List(ctx, filters)
		if err != nil {
			return err
		}
		page.Posts = posts
		page.Total = total
		page.TotalPages = int((total + int64(in.PageSize) - 1) / int64(in.PageSize))
		return nil
	}

	// Search results change with every keystroke; only filter pages cache well.
	if filters.Query != "" {
		if err := fetch(); err != nil {
			return nil, err
		}
		return page, nil
	}

	qualifier := fmt.Sprintf("c:%s:t:%s:a:%s:s:%s:p%d:n%d",
		in.CategorySlug, in.TagSlug, in.AuthorUsername, in.Sort, in.Page, in.PageSize)
	if err := cache.Aside(ctx, cache.PostsListKey(qualifier), page, cache.ListTTL, fetch); err != nil {
		return nil, err
	}
	return page, nil
}

// HomePage carries the landing page slices: the newest posts, the most
// viewed ones, and the category index.
type HomePage struct {
	Latest     []*models.Post    `json:"latest"`
	Popular    []*models.Post    `json:"popular"`
	Categories []models.Category `json:"categories"`
}

// Home assembles the landing page, served through the cache.
func (s *PostService) Home(ctx context.Context) (*HomePage, error) {
	home := &HomePage{}
	fetch := func() error {
		latest, _, err := s.postRepo.List(ctx, repository.PostFilters{
			Status: models.PostStatusPublished,
			Limit:  homeLatestLimit,
		})
		if err != nil {
			return err
		}
		popular, _, err := s.postRepo.List(ctx, repository.PostFilters{
			Status: models.PostStatusPublished,
			Sort:   "popular",
			Limit:  homePopularLimit,
		})
		if err != nil {
			return err
		}
		categories, err := s.postRepo.ListCategories(ctx)
		if err != nil {
			return err
		}
		home.Latest = latest
		home.Popular = popular
		home.Categories = categories
		return nil
	}
	if err := cache.Aside(ctx, cache.PostsListKey("home"), home, cache.ListTTL, fetch); err != nil {
		return nil, err
	}
	return home, nil
}

// GetByPermalink resolves a published post from its dated URL and records the
// view. The increment is a single atomic column update; a failure to record
// the view never fails the read.
func (s *PostService) GetByPermalink(ctx context.Context, year, month, day int, slug string) (*models.Post, error) {
	date := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	post, err := s.postRepo.GetBySlug(ctx, date, slug)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.IncrementViewCount(ctx, post.ID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to record post view",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("error", err.Error()),
		)
	} else {
		post.ViewCount++
		observability.PostViews.Inc()
	}
	return post, nil
}

// GetByID returns any post to its author or staff, and only published posts
// to everyone else.
func (s *PostService) GetByID(ctx context.Context, id uint, actorID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusPublished {
		ok, err := s.authz.Can(ctx, actorID, ActionEditPost, post)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewNotFoundError("Post", id)
		}
	}
	return post, nil
}

// Related returns a handful of published posts from the same category.
func (s *PostService) Related(ctx context.Context, post *models.Post) ([]*models.Post, error) {
	return s.postRepo.ListRelated(ctx, post, relatedLimit)
}

// CreatePostInput carries an authoring request.
type CreatePostInput struct {
	AuthorID     uint
	Title        string
	Content      string
	Excerpt      string
	Slug         string
	CategorySlug string
	TagNames     []string
	Publish      bool
}

// CreatePost validates and stores a new post. The slug defaults to a
// slugified title and is de-duplicated within the publish date by suffixing
// a counter.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if fields := validatePostInput(in.Title, in.Content, in.Excerpt); len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	post := &models.Post{
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Excerpt:  strings.TrimSpace(in.Excerpt),
		AuthorID: &in.AuthorID,
		Status:   models.PostStatusDraft,
	}
	if in.Publish {
		post.Status = models.PostStatusPublished
		post.PublishedAt = time.Now().UTC()
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = validation.Slugify(post.Title)
	}
	if err := validation.ValidatePostSlug(slug); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	day := post.PublishedAt.UTC().Format("2006-01-02")
	uniqueSlug, err := s.dedupeSlug(ctx, day, slug, 0)
	if err != nil {
		return nil, err
	}
	post.Slug = uniqueSlug

	if in.CategorySlug != "" {
		category, err := s.postRepo.GetCategoryBySlug(ctx, in.CategorySlug)
		if err != nil {
			return nil, err
		}
		post.CategoryID = &category.ID
	}
	if len(in.TagNames) > 0 {
		tags, err := s.postRepo.GetOrCreateTags(ctx, in.TagNames)
		if err != nil {
			return nil, err
		}
		post.Tags = tags
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// UpdatePostInput carries an edit request. Nil pointers leave fields
// untouched.
type UpdatePostInput struct {
	PostID   uint
	ActorID  uint
	Title    *string
	Content  *string
	Excerpt  *string
	Publish  *bool
	TagNames *[]string
}

// UpdatePost applies an edit after an ownership check. Publishing a draft
// stamps PublishedAt once; re-publishing keeps the original date and thus the
// permalink.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(ctx, in.ActorID, ActionEditPost, post); err != nil {
		return nil, err
	}

	if in.Title != nil {
		post.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Excerpt != nil {
		post.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if fields := validatePostInput(post.Title, post.Content, post.Excerpt); len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	if in.Publish != nil {
		if *in.Publish {
			if post.Status != models.PostStatusPublished {
				post.Status = models.PostStatusPublished
				if post.PublishedAt.IsZero() {
					post.PublishedAt = time.Now().UTC()
				}
			}
		} else {
			post.Status = models.PostStatusDraft
		}
	}

	if in.TagNames != nil {
		tags, err := s.postRepo.GetOrCreateTags(ctx, *in.TagNames)
		if err != nil {
			return nil, err
		}
		post.Tags = tags
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes a post after an ownership check.
func (s *PostService) DeletePost(ctx context.Context, postID, actorID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, actorID, ActionDeletePost, post); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

// ListCategories returns all categories with their published-post counts.
func (s *PostService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.postRepo.ListCategories(ctx)
}

// GetCategory resolves a category by slug.
func (s *PostService) GetCategory(ctx context.Context, slug string) (*models.Category, error) {
	return s.postRepo.GetCategoryBySlug(ctx, slug)
}

// ListTags returns all tags.
func (s *PostService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.postRepo.ListTags(ctx)
}

// GetTag resolves a tag by slug.
func (s *PostService) GetTag(ctx context.Context, slug string) (*models.Tag, error) {
	return s.postRepo.GetTagBySlug(ctx, slug)
}

func (s *PostService) dedupeSlug(ctx context.Context, day, slug string, excludeID uint) (string, error) {
	candidate := slug
	for i := 2; ; i++ {
		exists, err := s.postRepo.SlugExists(ctx, day, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, i)
	}
}

func validatePostInput(title, content, excerpt string) map[string]string {
	fields := map[string]string{}
	title = strings.TrimSpace(title)
	if title == "" {
		fields["title"] = "Title is required"
	} else if len(title) > titleMaxLen {
		fields["title"] = fmt.Sprintf("Title must be at most %d characters", titleMaxLen)
	}
	if strings.TrimSpace(content) == "" {
		fields["content"] = "Content is required"
	}
	if len(excerpt) > excerptMaxLen {
		fields["excerpt"] = fmt.Sprintf("Excerpt must be at most %d characters", excerptMaxLen)
	}
	return fields
}
