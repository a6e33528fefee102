// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	_ "inkwell/docs" // swagger docs
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/notifications"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	followRepo     repository.FollowRepository
	contactRepo    repository.ContactRepository
	subscriberRepo repository.SubscriberRepository

	notifier *notifications.Notifier
	authz    *service.Authorizer
	flags    *featureflags.Manager

	userService       *service.UserService
	postService       *service.PostService
	commentService    *service.CommentService
	moderationService *service.ModerationService
	followService     *service.FollowService
	contactService    *service.ContactService
	newsletterService *service.NewsletterService
}

// NewServer creates a server instance, connecting the database and Redis.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkwell-api"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		contactRepo:    repository.NewContactRepository(db),
		subscriberRepo: repository.NewSubscriberRepository(db),
	}

	server.flags = featureflags.NewManager(cfg.FeatureFlags)
	server.notifier = notifications.NewNotifier(notifications.NewMailer(cfg), cfg.NotificationEmail)

	server.userService = service.NewUserService(server.userRepo, server.followRepo)
	// Staff status is always re-read from the database, never from a token.
	server.authz = service.NewAuthorizer(server.userService.IsStaff)

	server.postService = service.NewPostService(server.postRepo, server.authz)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo, server.authz, server.notifier)
	server.moderationService = service.NewModerationService(server.commentRepo, server.authz)
	server.followService = service.NewFollowService(server.followRepo, server.userRepo)
	server.contactService = service.NewContactService(server.contactRepo, server.authz, server.notifier)
	server.newsletterService = service.NewNewsletterService(server.subscriberRepo, server.authz, server.notifier)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Tracing spans per request
	app.Use(middleware.TracingMiddleware())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Inkwell Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public content routes
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/home", s.GetHome)
	posts.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchPosts)
	// The dated permalink; must come after the fixed-segment routes above.
	posts.Get("/:year/:month/:day/:slug", middleware.AuthOptional, s.GetPostByPermalink)

	categories := api.Group("/categories")
	categories.Get("/", s.GetCategories)
	categories.Get("/:slug/posts", s.GetCategoryPosts)

	tags := api.Group("/tags")
	tags.Get("/", s.GetTags)
	tags.Get("/:slug/posts", s.GetTagPosts)

	// Comment submission accepts both authenticated and anonymous callers.
	posts.Post("/:id/comments", middleware.AuthOptional, middleware.RateLimit(
		s.redis, 5, time.Minute, "create_comment"), s.CreateComment)

	comments := api.Group("/comments")
	comments.Get("/:id/thread", middleware.AuthOptional, s.GetCommentThread)
	comments.Post("/:id/reply", middleware.AuthOptional, middleware.RateLimit(
		s.redis, 5, time.Minute, "create_comment"), s.ReplyToComment)
	comments.Post("/:id/vote", middleware.AuthRequired, s.VoteComment)
	comments.Post("/:id/report", middleware.AuthRequired, s.ReportComment)
	comments.Post("/:id/approve", middleware.AuthRequired, s.ApproveComment)
	comments.Post("/:id/disapprove", middleware.AuthRequired, s.DisapproveComment)
	comments.Put("/:id", middleware.AuthRequired, s.UpdateComment)
	comments.Delete("/:id", middleware.AuthRequired, s.DeleteComment)

	// Authoring
	protected := api.Group("", middleware.AuthRequired)
	protected.Post("/posts", s.CreatePost)
	protected.Put("/posts/:id", s.UpdatePost)
	protected.Delete("/posts/:id", s.DeletePost)

	// Moderation dashboards (staff)
	moderation := protected.Group("/moderation")
	moderation.Get("/comments/pending", s.GetPendingComments)
	moderation.Get("/reports", s.GetOpenReports)
	moderation.Post("/reports/:id/resolve", s.ResolveReport)

	// Users and the follow graph
	users := api.Group("/users")
	users.Get("/authors", s.GetAuthors)
	users.Get("/profile/:username", middleware.AuthOptional, s.GetUserProfile)
	users.Get("/profile/:username/followers", s.GetFollowers)
	users.Get("/me", middleware.AuthRequired, s.GetMyProfile)
	users.Put("/me", middleware.AuthRequired, s.UpdateMyProfile)
	users.Post("/:id/follow", middleware.AuthRequired, s.FollowUser)

	// Contact form and admin inbox
	contact := api.Group("/contact")
	contact.Post("/", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "contact"), s.SubmitContact)
	contactInbox := contact.Group("/messages", middleware.AuthRequired)
	contactInbox.Get("/", s.GetContactMessages)
	contactInbox.Get("/:id", s.GetContactMessage)
	contactInbox.Post("/:id/status", s.AdvanceContactMessage)

	// Newsletter
	newsletter := api.Group("/newsletter")
	newsletter.Post("/subscribe", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "newsletter"), s.SubscribeNewsletter)
	newsletter.Get("/unsubscribe/:token", s.UnsubscribeNewsletter)
	newsletter.Get("/subscribers", middleware.AuthRequired, s.GetSubscribers)
}

// Shutdown releases server-held resources after the HTTP listener stops.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is a soft dependency; the app degrades to uncached reads.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}
