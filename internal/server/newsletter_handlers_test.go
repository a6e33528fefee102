package server

import (
	"context"
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newsletterTestApp(subs *stubSubscriberRepo) *fiber.App {
	s := newTestServer(testDeps{subscribers: subs})
	app := fiber.New()
	app.Post("/api/newsletter/subscribe", s.SubscribeNewsletter)
	app.Get("/api/newsletter/unsubscribe/:token", s.UnsubscribeNewsletter)
	return app
}

func TestSubscribeNewsletter(t *testing.T) {
	t.Parallel()

	t.Run("new subscriber via ajax", func(t *testing.T) {
		t.Parallel()
		var created *models.Subscriber
		subs := &stubSubscriberRepo{
			getByEmail: func(ctx context.Context, email string) (*models.Subscriber, error) { return nil, nil },
			create: func(ctx context.Context, sub *models.Subscriber) error {
				sub.ID = 1
				created = sub
				return nil
			},
		}
		app := newsletterTestApp(subs)

		resp, body := doJSON(t, app, http.MethodPost, "/api/newsletter/subscribe", fiber.Map{
			"email": "Reader@Example.com",
		}, map[string]string{"X-Requested-With": "XMLHttpRequest"})

		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		require.NotNil(t, created)
		assert.Equal(t, "reader@example.com", created.Email)
		assert.True(t, created.IsActive)
	})

	t.Run("form flow redirects back", func(t *testing.T) {
		t.Parallel()
		subs := &stubSubscriberRepo{
			getByEmail: func(ctx context.Context, email string) (*models.Subscriber, error) { return nil, nil },
			create: func(ctx context.Context, sub *models.Subscriber) error {
				sub.ID = 2
				return nil
			},
		}
		app := newsletterTestApp(subs)

		req := fiber.Map{"email": "reader@example.com"}
		resp, _ := doJSON(t, app, http.MethodPost, "/api/newsletter/subscribe", req, map[string]string{
			"Referer": "/about",
		})

		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/about", resp.Header.Get("Location"))
	})

	t.Run("already subscribed", func(t *testing.T) {
		t.Parallel()
		subs := &stubSubscriberRepo{
			getByEmail: func(ctx context.Context, email string) (*models.Subscriber, error) {
				return &models.Subscriber{ID: 1, Email: email, IsActive: true}, nil
			},
		}
		app := newsletterTestApp(subs)

		resp, body := doJSON(t, app, http.MethodPost, "/api/newsletter/subscribe", fiber.Map{
			"email": "reader@example.com",
		}, nil)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, models.CodeDuplicateAction, body["code"])
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		app := newsletterTestApp(&stubSubscriberRepo{})

		resp, body := doJSON(t, app, http.MethodPost, "/api/newsletter/subscribe", fiber.Map{
			"email": "not-an-email",
		}, nil)

		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		fields, ok := body["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, fields, "email")
	})
}

func TestUnsubscribeNewsletter(t *testing.T) {
	t.Parallel()

	t.Run("deactivates by token", func(t *testing.T) {
		t.Parallel()
		stored := &models.Subscriber{ID: 1, Email: "reader@example.com", IsActive: true, Token: "tok-1"}
		subs := &stubSubscriberRepo{
			getByToken: func(ctx context.Context, token string) (*models.Subscriber, error) {
				if token == stored.Token {
					return stored, nil
				}
				return nil, models.NewNotFoundError("Subscriber", token)
			},
			update: func(ctx context.Context, sub *models.Subscriber) error { return nil },
		}
		app := newsletterTestApp(subs)

		resp, body := doJSON(t, app, http.MethodGet, "/api/newsletter/unsubscribe/tok-1", nil, map[string]string{
			"X-Requested-With": "XMLHttpRequest",
		})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["success"])
		assert.False(t, stored.IsActive)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()
		subs := &stubSubscriberRepo{
			getByToken: func(ctx context.Context, token string) (*models.Subscriber, error) {
				return nil, models.NewNotFoundError("Subscriber", token)
			},
		}
		app := newsletterTestApp(subs)

		resp, _ := doJSON(t, app, http.MethodGet, "/api/newsletter/unsubscribe/bogus", nil, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
