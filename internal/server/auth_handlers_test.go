package server

import (
	"context"
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authTestApp(users *stubUserRepo) *fiber.App {
	s := newTestServer(testDeps{users: users})
	app := fiber.New()
	app.Post("/api/auth/signup", s.Signup)
	app.Post("/api/auth/login", s.Login)
	return app
}

func TestSignup(t *testing.T) {
	t.Parallel()

	t.Run("creates account and returns a token", func(t *testing.T) {
		t.Parallel()
		users := &stubUserRepo{
			getByEmail:    func(ctx context.Context, email string) (*models.User, error) { return nil, nil },
			getByUsername: func(ctx context.Context, username string) (*models.User, error) { return nil, nil },
			create: func(ctx context.Context, user *models.User) error {
				user.ID = 1
				return nil
			},
		}
		app := authTestApp(users)

		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", fiber.Map{
			"username": "ann-writes",
			"email":    "ann@example.com",
			"password": "Str0ng-passphrase!",
		}, nil)

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.NotEmpty(t, body["token"])

		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ann-writes", user["username"])
		assert.NotContains(t, user, "password")
	})

	t.Run("weak password is a field error", func(t *testing.T) {
		t.Parallel()
		users := &stubUserRepo{
			getByEmail:    func(ctx context.Context, email string) (*models.User, error) { return nil, nil },
			getByUsername: func(ctx context.Context, username string) (*models.User, error) { return nil, nil },
		}
		app := authTestApp(users)

		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", fiber.Map{
			"username": "ann-writes",
			"email":    "ann@example.com",
			"password": "short",
		}, nil)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, false, body["success"])
		fields, ok := body["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, fields, "password")
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng-passphrase!"), bcrypt.DefaultCost)
	require.NoError(t, err)

	users := &stubUserRepo{
		getByEmail: func(ctx context.Context, email string) (*models.User, error) {
			if email != "ann@example.com" {
				return nil, nil
			}
			return &models.User{ID: 7, Username: "ann-writes", Email: email, Password: string(hash)}, nil
		},
	}
	app := authTestApp(users)

	t.Run("valid credentials", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
			"email":    "ann@example.com",
			"password": "Str0ng-passphrase!",
		}, nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
			"email":    "ann@example.com",
			"password": "Wr0ng-passphrase!",
		}, nil)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, models.CodeUnauthorized, body["code"])
	})

	t.Run("unknown email reads the same as wrong password", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
			"email":    "nobody@example.com",
			"password": "Str0ng-passphrase!",
		}, nil)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid email or password", body["error"])
	})
}
