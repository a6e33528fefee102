package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary List published posts
// @Description Filterable, paginated listing of published posts
// @Tags posts
// @Produce json
// @Param category query string false "Category slug"
// @Param tag query string false "Tag slug"
// @Param author query string false "Author username"
// @Param q query string false "Free-text search"
// @Param sort query string false "Sort order (popular)"
// @Param page query int false "Page number"
// @Success 200 {object} service.PostPage
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := s.parsePagination(c, "list")

	result, err := s.postService.ListPublished(c.Context(), service.ListPostsInput{
		CategorySlug:   c.Query("category"),
		TagSlug:        c.Query("tag"),
		AuthorUsername: c.Query("author"),
		Query:          c.Query("q"),
		Sort:           c.Query("sort"),
		Page:           page.Page,
		PageSize:       page.PageSize,
	}, false)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// SearchPosts handles GET /api/posts/search?q=
// An empty or missing query is a valid search that finds nothing.
// @Summary Search posts
// @Tags posts
// @Produce json
// @Param q query string false "Search terms"
// @Param page query int false "Page number"
// @Success 200 {object} service.PostPage
// @Router /posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	page := s.parsePagination(c, "list")

	result, err := s.postService.ListPublished(c.Context(), service.ListPostsInput{
		Query:    c.Query("q"),
		Page:     page.Page,
		PageSize: page.PageSize,
	}, true)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// GetHome handles GET /api/posts/home
// @Summary Landing page slices
// @Tags posts
// @Produce json
// @Success 200 {object} service.HomePage
// @Router /posts/home [get]
func (s *Server) GetHome(c *fiber.Ctx) error {
	home, err := s.postService.Home(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(home)
}

// GetPostByPermalink handles GET /api/posts/:year/:month/:day/:slug
// Resolving the permalink records one view and returns the post together
// with its comment thread and related posts.
// @Summary Get a post by its dated permalink
// @Tags posts
// @Produce json
// @Param year path int true "Publish year"
// @Param month path int true "Publish month"
// @Param day path int true "Publish day"
// @Param slug path string true "Post slug"
// @Success 200 {object} object{post=models.Post,comments=[]models.CommentThread,related=[]models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{year}/{month}/{day}/{slug} [get]
func (s *Server) GetPostByPermalink(c *fiber.Ctx) error {
	year, err1 := c.ParamsInt("year")
	month, err2 := c.ParamsInt("month")
	day, err3 := c.ParamsInt("day")
	if err1 != nil || err2 != nil || err3 != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid permalink date"))
	}

	post, err := s.postService.GetByPermalink(c.Context(), year, month, day, c.Params("slug"))
	if err != nil {
		return fail(c, err)
	}

	thread, err := s.commentService.GetThread(c.Context(), post.ID)
	if err != nil {
		return fail(c, err)
	}

	// Related posts ship enabled; the flag exists to switch the section off
	// without a deploy.
	related := []*models.Post{}
	if s.flags.EnabledOr("related_posts", s.currentUserID(c), true) {
		related, err = s.postService.Related(c.Context(), post)
		if err != nil {
			return fail(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"post":      post,
		"comments":  thread,
		"related":   related,
		"read_time": post.ReadTime(),
	})
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{title=string,content=string,excerpt=string,slug=string,category=string,tags=[]string,publish=bool} true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} object{errors=object}
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title    string   `json:"title"`
		Content  string   `json:"content"`
		Excerpt  string   `json:"excerpt"`
		Slug     string   `json:"slug"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
		Publish  bool     `json:"publish"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID:     s.currentUserID(c),
		Title:        req.Title,
		Content:      req.Content,
		Excerpt:      req.Excerpt,
		Slug:         req.Slug,
		CategorySlug: req.Category,
		TagNames:     req.Tags,
		Publish:      req.Publish,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title   *string   `json:"title"`
		Content *string   `json:"content"`
		Excerpt *string   `json:"excerpt"`
		Publish *bool     `json:"publish"`
		Tags    *[]string `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		PostID:   postID,
		ActorID:  s.currentUserID(c),
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		Publish:  req.Publish,
		TagNames: req.Tags,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), postID, s.currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCategories handles GET /api/categories
// @Summary List categories with post counts
// @Tags taxonomy
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.postService.ListCategories(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(categories)
}

// GetCategoryPosts handles GET /api/categories/:slug/posts
// @Summary List a category's published posts
// @Tags taxonomy
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} object{category=models.Category,posts=service.PostPage}
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{slug}/posts [get]
func (s *Server) GetCategoryPosts(c *fiber.Ctx) error {
	slug := c.Params("slug")
	category, err := s.postService.GetCategory(c.Context(), slug)
	if err != nil {
		return fail(c, err)
	}

	page := s.parsePagination(c, "index")
	result, err := s.postService.ListPublished(c.Context(), service.ListPostsInput{
		CategorySlug: slug,
		Page:         page.Page,
		PageSize:     page.PageSize,
	}, false)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"category": category,
		"posts":    result,
	})
}

// GetTags handles GET /api/tags
// @Summary List tags
// @Tags taxonomy
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.postService.ListTags(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tags)
}

// GetTagPosts handles GET /api/tags/:slug/posts
// @Summary List a tag's published posts
// @Tags taxonomy
// @Produce json
// @Param slug path string true "Tag slug"
// @Success 200 {object} object{tag=models.Tag,posts=service.PostPage}
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{slug}/posts [get]
func (s *Server) GetTagPosts(c *fiber.Ctx) error {
	slug := c.Params("slug")
	tag, err := s.postService.GetTag(c.Context(), slug)
	if err != nil {
		return fail(c, err)
	}

	page := s.parsePagination(c, "index")
	result, err := s.postService.ListPublished(c.Context(), service.ListPostsInput{
		TagSlug:  slug,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, false)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"tag":   tag,
		"posts": result,
	})
}
