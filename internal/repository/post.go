package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/validation"

	"gorm.io/gorm"
)

// PostFilters narrows a post listing. Zero values mean "no filter"; set
// filters are combined with AND. Query is free-text matched OR-wise against
// title, content, excerpt, and tag names.
type PostFilters struct {
	Status         models.PostStatus
	CategorySlug   string
	TagSlug        string
	AuthorUsername string
	Query          string
	Sort           string // "new" (default) or "popular"
	Limit          int
	Offset         int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, day, slug string) (*models.Post, error)
	List(ctx context.Context, f PostFilters) ([]*models.Post, int64, error)
	ListRelated(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IncrementViewCount(ctx context.Context, id uint) error
	SlugExists(ctx context.Context, day, slug string, excludeID uint) (bool, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error)
	GetOrCreateTags(ctx context.Context, names []string) ([]models.Tag, error)
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
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("A post with this slug already exists for that date")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx)).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// GetBySlug resolves a published post by its permalink components. Drafts are
// never reachable through the dated URL. Anonymous reads are served through
// the cache.
func (r *postRepository) GetBySlug(ctx context.Context, day, slug string) (*models.Post, error) {
	var post models.Post
	key := cache.PostSlugKey(day, slug)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		err := r.applyPostDetails(readDB(r.db).WithContext(ctx)).
			Preload("Author").
			Preload("Category").
			Preload("Tags").
			Where("published_day = ? AND slug = ? AND status = ?", day, slug, models.PostStatusPublished).
			First(&post).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", slug)
		}
		if err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, f PostFilters) ([]*models.Post, int64, error) {
	base := readDB(r.db).WithContext(ctx).Model(&models.Post{})
	base = r.applyFilters(base, f)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var posts []*models.Post
	q := r.applyPostDetails(base.Session(&gorm.Session{})).
		Preload("Author").
		Preload("Category").
		Preload("Tags")
	q = r.applySort(q, f.Sort)
	if err := q.Limit(f.Limit).Offset(f.Offset).Find(&posts).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

// ListRelated returns published posts sharing the category, newest first.
func (r *postRepository) ListRelated(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error) {
	if post.CategoryID == nil {
		return nil, nil
	}
	var posts []*models.Post
	err := r.applyPostDetails(readDB(r.db).WithContext(ctx)).
		Preload("Author").
		Preload("Category").
		Where("category_id = ? AND posts.id <> ? AND status = ?", *post.CategoryID, post.ID, models.PostStatusPublished).
		Order("published_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) applyFilters(db *gorm.DB, f PostFilters) *gorm.DB {
	if f.Status != "" {
		db = db.Where("posts.status = ?", f.Status)
	}
	if f.CategorySlug != "" {
		db = db.Where("posts.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.CategorySlug)
	}
	if f.TagSlug != "" {
		db = db.Where("EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = posts.id AND t.slug = ?)", f.TagSlug)
	}
	if f.AuthorUsername != "" {
		db = db.Where("posts.author_id IN (SELECT id FROM users WHERE username = ?)", f.AuthorUsername)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		// EXISTS keeps one row per post regardless of matching tag count.
		db = db.Where(
			"(posts.title ILIKE ? OR posts.content ILIKE ? OR posts.excerpt ILIKE ? OR "+
				"EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = posts.id AND t.name ILIKE ?))",
			like, like, like, like,
		)
	}
	return db
}

func (r *postRepository) applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case "popular":
		return db.Order("view_count DESC, published_at DESC")
	default: // "new" and anything unrecognized
		return db.Order("published_at DESC")
	}
}

// applyPostDetails adds the visible-comment count in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.active = true AND comments.is_approved = true) as comments_count")
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("A post with this slug already exists for that date")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	cache.Invalidate(ctx, cache.PostSlugKey(post.PublishedDay, post.Slug))
	cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidatePostsList(ctx)
	return nil
}

// IncrementViewCount bumps the counter in a single UPDATE so concurrent views
// never lose increments.
func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) SlugExists(ctx context.Context, day, slug string, excludeID uint) (bool, error) {
	var count int64
	q := readDB(r.db).WithContext(ctx).
		Model(&models.Post{}).
		Where("published_day = ? AND slug = ?", day, slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := readDB(r.db).WithContext(ctx).
		Select("categories.*, " +
			"(SELECT COUNT(*) FROM posts WHERE posts.category_id = categories.id AND posts.status = 'published' AND posts.deleted_at IS NULL) as post_count").
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *postRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := readDB(r.db).WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Category", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &category, nil
}

func (r *postRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := readDB(r.db).WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *postRepository) GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var tag models.Tag
	if err := readDB(r.db).WithContext(ctx).Where("slug = ?", slug).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

// GetOrCreateTags resolves tag names to rows, creating missing ones. Slugs
// are derived from the name; a concurrent create of the same tag falls back
// to a re-read.
func (r *postRepository) GetOrCreateTags(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		var tag models.Tag
		err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name, Slug: validation.Slugify(name)}
			if createErr := r.db.WithContext(ctx).Create(&tag).Error; createErr != nil {
				if !isUniqueConstraintError(createErr) {
					return nil, models.NewInternalError(createErr)
				}
				if retryErr := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; retryErr != nil {
					return nil, models.NewInternalError(retryErr)
				}
			}
		} else if err != nil {
			return nil, models.NewInternalError(err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
