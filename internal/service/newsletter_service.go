package service

import (
	"context"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/google/uuid"
)

// NewsletterService manages newsletter subscriptions.
type NewsletterService struct {
	subscriberRepo repository.SubscriberRepository
	authz          *Authorizer
	notifier       *notifications.Notifier
}

// NewNewsletterService returns a new NewsletterService.
func NewNewsletterService(subscriberRepo repository.SubscriberRepository, authz *Authorizer, notifier *notifications.Notifier) *NewsletterService {
	return &NewsletterService{subscriberRepo: subscriberRepo, authz: authz, notifier: notifier}
}

// Subscribe signs an email up for the newsletter. A previously unsubscribed
// address is reactivated on its original row; an already active one is
// rejected. New and reactivated subscribers get a welcome email.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"email": err.Error()})
	}

	existing, err := s.subscriberRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsActive {
			return nil, models.NewDuplicateActionError("This email is already subscribed")
		}
		existing.IsActive = true
		if err := s.subscriberRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		observability.NewsletterSignups.WithLabelValues("reactivated").Inc()
		s.notifier.NewsletterWelcome(existing)
		return existing, nil
	}

	sub := &models.Subscriber{
		Email:    email,
		IsActive: true,
		Token:    uuid.NewString(),
	}
	if err := s.subscriberRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	observability.NewsletterSignups.WithLabelValues("new").Inc()
	s.notifier.NewsletterWelcome(sub)
	return sub, nil
}

// Unsubscribe deactivates the subscriber holding the given token. The row is
// kept so a later subscribe reactivates it. Unsubscribing twice is a no-op.
func (s *NewsletterService) Unsubscribe(ctx context.Context, token string) (*models.Subscriber, error) {
	sub, err := s.subscriberRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !sub.IsActive {
		return sub, nil
	}
	sub.IsActive = false
	if err := s.subscriberRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// SubscriberPage is one page of active subscribers.
type SubscriberPage struct {
	Subscribers []*models.Subscriber `json:"subscribers"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
}

// ListActive returns active subscribers to staff.
func (s *NewsletterService) ListActive(ctx context.Context, actorID uint, page, pageSize int) (*SubscriberPage, error) {
	if err := s.authz.Require(ctx, actorID, ActionManageInbox, nil); err != nil {
		return nil, err
	}
	subs, total, err := s.subscriberRepo.ListActive(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &SubscriberPage{Subscribers: subs, Total: total, Page: page, PageSize: pageSize}, nil
}
