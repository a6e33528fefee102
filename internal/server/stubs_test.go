package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// Function-field stubs keep each test focused on the calls it cares about;
// an unset field panics, proving the handler never reached it.

type stubUserRepo struct {
	getByID       func(ctx context.Context, id uint) (*models.User, error)
	getByEmail    func(ctx context.Context, email string) (*models.User, error)
	getByUsername func(ctx context.Context, username string) (*models.User, error)
	create        func(ctx context.Context, user *models.User) error
	update        func(ctx context.Context, user *models.User) error
	deleteFn      func(ctx context.Context, id uint) error
	list          func(ctx context.Context, limit, offset int) ([]models.User, error)
	listAuthors   func(ctx context.Context, limit, offset int) ([]models.User, int64, error)
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByID(ctx, id)
}
func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmail(ctx, email)
}
func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsername(ctx, username)
}
func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	return s.create(ctx, user)
}
func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error {
	return s.update(ctx, user)
}
func (s *stubUserRepo) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *stubUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.list(ctx, limit, offset)
}
func (s *stubUserRepo) ListAuthors(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	return s.listAuthors(ctx, limit, offset)
}

type stubCommentRepo struct {
	create            func(ctx context.Context, comment *models.Comment) error
	getByID           func(ctx context.Context, id uint) (*models.Comment, error)
	listVisibleByPost func(ctx context.Context, postID uint) ([]*models.Comment, error)
	listPending       func(ctx context.Context, limit, offset int) ([]*models.Comment, int64, error)
	update            func(ctx context.Context, comment *models.Comment) error
	setVote           func(ctx context.Context, commentID, userID uint, value int) (*models.VoteResult, error)
	getVote           func(ctx context.Context, commentID, userID uint) (*models.CommentVote, error)
	createReport      func(ctx context.Context, report *models.CommentReport) error
	getReport         func(ctx context.Context, id uint) (*models.CommentReport, error)
	listOpenReports   func(ctx context.Context, limit, offset int) ([]*models.CommentReport, int64, error)
	updateReport      func(ctx context.Context, report *models.CommentReport) error
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return s.create(ctx, comment)
}
func (s *stubCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByID(ctx, id)
}
func (s *stubCommentRepo) ListVisibleByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listVisibleByPost(ctx, postID)
}
func (s *stubCommentRepo) ListPending(ctx context.Context, limit, offset int) ([]*models.Comment, int64, error) {
	return s.listPending(ctx, limit, offset)
}
func (s *stubCommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	return s.update(ctx, comment)
}
func (s *stubCommentRepo) SetVote(ctx context.Context, commentID, userID uint, value int) (*models.VoteResult, error) {
	return s.setVote(ctx, commentID, userID, value)
}
func (s *stubCommentRepo) GetVote(ctx context.Context, commentID, userID uint) (*models.CommentVote, error) {
	return s.getVote(ctx, commentID, userID)
}
func (s *stubCommentRepo) CreateReport(ctx context.Context, report *models.CommentReport) error {
	return s.createReport(ctx, report)
}
func (s *stubCommentRepo) GetReport(ctx context.Context, id uint) (*models.CommentReport, error) {
	return s.getReport(ctx, id)
}
func (s *stubCommentRepo) ListOpenReports(ctx context.Context, limit, offset int) ([]*models.CommentReport, int64, error) {
	return s.listOpenReports(ctx, limit, offset)
}
func (s *stubCommentRepo) UpdateReport(ctx context.Context, report *models.CommentReport) error {
	return s.updateReport(ctx, report)
}

type stubSubscriberRepo struct {
	getByEmail func(ctx context.Context, email string) (*models.Subscriber, error)
	getByToken func(ctx context.Context, token string) (*models.Subscriber, error)
	create     func(ctx context.Context, sub *models.Subscriber) error
	update     func(ctx context.Context, sub *models.Subscriber) error
	listActive func(ctx context.Context, limit, offset int) ([]*models.Subscriber, int64, error)
}

func (s *stubSubscriberRepo) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	return s.getByEmail(ctx, email)
}
func (s *stubSubscriberRepo) GetByToken(ctx context.Context, token string) (*models.Subscriber, error) {
	return s.getByToken(ctx, token)
}
func (s *stubSubscriberRepo) Create(ctx context.Context, sub *models.Subscriber) error {
	return s.create(ctx, sub)
}
func (s *stubSubscriberRepo) Update(ctx context.Context, sub *models.Subscriber) error {
	return s.update(ctx, sub)
}
func (s *stubSubscriberRepo) ListActive(ctx context.Context, limit, offset int) ([]*models.Subscriber, int64, error) {
	return s.listActive(ctx, limit, offset)
}

type stubPostRepo struct {
	getByID func(ctx context.Context, id uint) (*models.Post, error)
}

func (s *stubPostRepo) Create(ctx context.Context, post *models.Post) error { panic("unexpected") }
func (s *stubPostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByID(ctx, id)
}
func (s *stubPostRepo) GetBySlug(ctx context.Context, day, slug string) (*models.Post, error) {
	panic("unexpected")
}
func (s *stubPostRepo) List(ctx context.Context, f repository.PostFilters) ([]*models.Post, int64, error) {
	panic("unexpected")
}
func (s *stubPostRepo) ListRelated(ctx context.Context, post *models.Post, limit int) ([]*models.Post, error) {
	panic("unexpected")
}
func (s *stubPostRepo) Update(ctx context.Context, post *models.Post) error { panic("unexpected") }
func (s *stubPostRepo) Delete(ctx context.Context, id uint) error           { panic("unexpected") }
func (s *stubPostRepo) IncrementViewCount(ctx context.Context, id uint) error {
	panic("unexpected")
}
func (s *stubPostRepo) SlugExists(ctx context.Context, day, slug string, excludeID uint) (bool, error) {
	panic("unexpected")
}
func (s *stubPostRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	panic("unexpected")
}
func (s *stubPostRepo) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	panic("unexpected")
}
func (s *stubPostRepo) ListTags(ctx context.Context) ([]models.Tag, error) { panic("unexpected") }
func (s *stubPostRepo) GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	panic("unexpected")
}
func (s *stubPostRepo) GetOrCreateTags(ctx context.Context, names []string) ([]models.Tag, error) {
	panic("unexpected")
}

// testConfig returns a config with deterministic page sizes and JWT secret.
func testConfig() *config.Config {
	return &config.Config{
		Env:           "test",
		JWTSecret:     "test-secret-test-secret-test-secret!",
		PageSizeList:  10,
		PageSizeGrid:  6,
		PageSizeIndex: 12,
	}
}

// testDeps collects the stub repositories a handler test wires in. Services
// for nil repos stay nil; reaching one is a test bug, not a production path.
type testDeps struct {
	users       *stubUserRepo
	posts       *stubPostRepo
	comments    *stubCommentRepo
	subscribers *stubSubscriberRepo
	staff       bool
}

func newTestServer(d testDeps) *Server {
	cfg := testConfig()
	middleware.InitMiddleware(cfg)

	s := &Server{config: cfg}
	s.authz = service.NewAuthorizer(func(ctx context.Context, userID uint) (bool, error) {
		return d.staff, nil
	})

	if d.users != nil {
		s.userRepo = d.users
		s.userService = service.NewUserService(d.users, nil)
	}
	if d.comments != nil {
		s.commentRepo = d.comments
		s.commentService = service.NewCommentService(d.comments, d.posts, s.authz, nil)
	}
	if d.subscribers != nil {
		s.subscriberRepo = d.subscribers
		s.newsletterService = service.NewNewsletterService(d.subscribers, s.authz, nil)
	}
	return s
}

// doJSON issues a JSON request against the app and decodes the response body.
func doJSON(t *testing.T, app *fiber.App, method, target string, body any, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	decoded := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}
