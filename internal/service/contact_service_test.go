package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactService_Submit_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    SubmitContactInput
		field string
	}{
		{
			"missing name",
			SubmitContactInput{Email: "a@example.com", Subject: models.ContactSubjectGeneral, Message: "hello"},
			"name",
		},
		{
			"bad email",
			SubmitContactInput{Name: "Ann", Email: "nope", Subject: models.ContactSubjectGeneral, Message: "hello"},
			"email",
		},
		{
			"unknown subject",
			SubmitContactInput{Name: "Ann", Email: "a@example.com", Subject: "billing", Message: "hello"},
			"subject",
		},
		{
			"other without custom subject",
			SubmitContactInput{Name: "Ann", Email: "a@example.com", Subject: models.ContactSubjectOther, Message: "hello"},
			"custom_subject",
		},
		{
			"missing message",
			SubmitContactInput{Name: "Ann", Email: "a@example.com", Subject: models.ContactSubjectGeneral},
			"message",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := NewContactService(&stubContactRepo{}, staffAuthorizer(false), nil)

			_, err := svc.Submit(context.Background(), tt.in)
			assertFieldError(t, err, tt.field)
		})
	}
}

func TestContactService_Submit(t *testing.T) {
	t.Parallel()

	var created *models.ContactMessage
	contactRepo := &stubContactRepo{
		create: func(ctx context.Context, msg *models.ContactMessage) error {
			msg.ID = 3
			created = msg
			return nil
		},
	}
	svc := NewContactService(contactRepo, staffAuthorizer(false), nil)

	msg, err := svc.Submit(context.Background(), SubmitContactInput{
		Name:          "  Ann  ",
		Email:         "ann@example.com",
		Subject:       models.ContactSubjectOther,
		CustomSubject: "Guest post",
		Message:       "Would you take a submission?",
		IPAddress:     "203.0.113.9",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, models.ContactStatusNew, msg.Status)
	assert.Equal(t, "Ann", msg.Name)
	assert.Equal(t, "Guest post", msg.SubjectLabel())
	assert.Equal(t, "203.0.113.9", msg.IPAddress)
}

func TestContactService_Inbox_RequiresStaff(t *testing.T) {
	t.Parallel()

	svc := NewContactService(&stubContactRepo{}, staffAuthorizer(false), nil)

	_, err := svc.Inbox(context.Background(), 3, "", 1, 10)
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func TestContactService_Advance(t *testing.T) {
	t.Parallel()

	newMessage := func(status models.ContactStatus) (*models.ContactMessage, *stubContactRepo) {
		msg := &models.ContactMessage{ID: 1, Email: "ann@example.com", Status: status}
		repo := &stubContactRepo{
			getByID: func(ctx context.Context, id uint) (*models.ContactMessage, error) { return msg, nil },
			update:  func(ctx context.Context, m *models.ContactMessage) error { return nil },
		}
		return msg, repo
	}

	t.Run("requires staff", func(t *testing.T) {
		t.Parallel()
		_, repo := newMessage(models.ContactStatusNew)
		svc := NewContactService(repo, staffAuthorizer(false), nil)

		_, err := svc.Advance(context.Background(), AdvanceInput{MessageID: 1, ActorID: 3, Next: models.ContactStatusRead})
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("marks read", func(t *testing.T) {
		t.Parallel()
		_, repo := newMessage(models.ContactStatusNew)
		svc := NewContactService(repo, staffAuthorizer(true), nil)

		msg, err := svc.Advance(context.Background(), AdvanceInput{MessageID: 1, ActorID: 9, Next: models.ContactStatusRead})
		require.NoError(t, err)
		assert.Equal(t, models.ContactStatusRead, msg.Status)
		assert.NotNil(t, msg.ReadAt)
	})

	t.Run("never moves backward", func(t *testing.T) {
		t.Parallel()
		_, repo := newMessage(models.ContactStatusReplied)
		svc := NewContactService(repo, staffAuthorizer(true), nil)

		_, err := svc.Advance(context.Background(), AdvanceInput{MessageID: 1, ActorID: 9, Next: models.ContactStatusRead})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("reply requires a response", func(t *testing.T) {
		t.Parallel()
		_, repo := newMessage(models.ContactStatusRead)
		svc := NewContactService(repo, staffAuthorizer(true), nil)

		_, err := svc.Advance(context.Background(), AdvanceInput{MessageID: 1, ActorID: 9, Next: models.ContactStatusReplied})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("reply records the response", func(t *testing.T) {
		t.Parallel()
		_, repo := newMessage(models.ContactStatusNew)
		svc := NewContactService(repo, staffAuthorizer(true), nil)

		msg, err := svc.Advance(context.Background(), AdvanceInput{
			MessageID: 1,
			ActorID:   9,
			Next:      models.ContactStatusReplied,
			Response:  "Thanks, we will be in touch.",
		})
		require.NoError(t, err)
		assert.Equal(t, models.ContactStatusReplied, msg.Status)
		assert.Equal(t, "Thanks, we will be in touch.", msg.Response)
		require.NotNil(t, msg.RespondedBy)
		assert.Equal(t, uint(9), *msg.RespondedBy)
		assert.NotNil(t, msg.RepliedAt)
		// Jumping straight from new still counts as read.
		assert.NotNil(t, msg.ReadAt)
	})

	t.Run("archive is terminal", func(t *testing.T) {
		t.Parallel()
		msg, repo := newMessage(models.ContactStatusReplied)
		svc := NewContactService(repo, staffAuthorizer(true), nil)

		got, err := svc.Advance(context.Background(), AdvanceInput{MessageID: 1, ActorID: 9, Next: models.ContactStatusArchived})
		require.NoError(t, err)
		assert.NotNil(t, got.ArchivedAt)

		msg.Status = models.ContactStatusArchived
		_, err = svc.Advance(context.Background(), AdvanceInput{MessageID: 1, ActorID: 9, Next: models.ContactStatusArchived})
		assertAppErrorCode(t, err, models.CodeValidation)
	})
}
