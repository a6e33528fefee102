package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

const contactMessageMaxLen = 10000

// ContactService implements the contact form and the admin inbox workflow.
type ContactService struct {
	contactRepo repository.ContactRepository
	authz       *Authorizer
	notifier    *notifications.Notifier
}

// NewContactService returns a new ContactService.
func NewContactService(contactRepo repository.ContactRepository, authz *Authorizer, notifier *notifications.Notifier) *ContactService {
	return &ContactService{contactRepo: contactRepo, authz: authz, notifier: notifier}
}

// SubmitContactInput carries a contact form submission.
type SubmitContactInput struct {
	Name          string
	Email         string
	Phone         string
	Subject       models.ContactSubject
	CustomSubject string
	Message       string
	IPAddress     string
	UserAgent     string
}

// Submit validates and stores a contact message, then notifies the admin and
// acknowledges the sender. Both emails are best effort; the submission
// succeeds regardless.
func (s *ContactService) Submit(ctx context.Context, in SubmitContactInput) (*models.ContactMessage, error) {
	fields := map[string]string{}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	in.CustomSubject = strings.TrimSpace(in.CustomSubject)

	if in.Name == "" {
		fields["name"] = "Name is required"
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		fields["email"] = err.Error()
	}
	if !in.Subject.Valid() {
		fields["subject"] = "Unknown subject"
	}
	if in.Subject == models.ContactSubjectOther && in.CustomSubject == "" {
		fields["custom_subject"] = "Subject is required when choosing other"
	}
	if in.Message == "" {
		fields["message"] = "Message is required"
	} else if len(in.Message) > contactMessageMaxLen {
		fields["message"] = "Message is too long"
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	msg := &models.ContactMessage{
		Name:          in.Name,
		Email:         in.Email,
		Phone:         strings.TrimSpace(in.Phone),
		Subject:       in.Subject,
		CustomSubject: in.CustomSubject,
		Message:       in.Message,
		IPAddress:     in.IPAddress,
		UserAgent:     in.UserAgent,
		Status:        models.ContactStatusNew,
	}
	if err := s.contactRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.notifier.ContactReceived(msg)
	s.notifier.ContactConfirmation(msg)
	return msg, nil
}

// InboxPage is one page of the admin inbox.
type InboxPage struct {
	Messages []*models.ContactMessage       `json:"messages"`
	Total    int64                          `json:"total"`
	Counts   map[models.ContactStatus]int64 `json:"counts"`
	Page     int                            `json:"page"`
	PageSize int                            `json:"page_size"`
}

// Inbox lists contact messages for staff, optionally filtered by status.
func (s *ContactService) Inbox(ctx context.Context, actorID uint, status models.ContactStatus, page, pageSize int) (*InboxPage, error) {
	if err := s.authz.Require(ctx, actorID, ActionManageInbox, nil); err != nil {
		return nil, err
	}
	if status != "" && !statusKnown(status) {
		return nil, models.NewValidationError("Unknown status filter")
	}

	msgs, total, err := s.contactRepo.List(ctx, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	counts, err := s.contactRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &InboxPage{Messages: msgs, Total: total, Counts: counts, Page: page, PageSize: pageSize}, nil
}

// GetMessage returns one inbox message to staff.
func (s *ContactService) GetMessage(ctx context.Context, actorID, id uint) (*models.ContactMessage, error) {
	if err := s.authz.Require(ctx, actorID, ActionManageInbox, nil); err != nil {
		return nil, err
	}
	return s.contactRepo.GetByID(ctx, id)
}

// AdvanceInput moves a message along the workflow. Response is required when
// advancing to replied.
type AdvanceInput struct {
	MessageID uint
	ActorID   uint
	Next      models.ContactStatus
	Response  string
}

// Advance moves a contact message forward in the workflow. Transitions only
// go forward; each reached state stamps its own timestamp exactly once.
// Advancing to replied records the response and emails it to the sender.
func (s *ContactService) Advance(ctx context.Context, in AdvanceInput) (*models.ContactMessage, error) {
	if err := s.authz.Require(ctx, in.ActorID, ActionManageInbox, nil); err != nil {
		return nil, err
	}
	if !statusKnown(in.Next) {
		return nil, models.NewValidationError("Unknown status")
	}

	msg, err := s.contactRepo.GetByID(ctx, in.MessageID)
	if err != nil {
		return nil, err
	}
	if !msg.Status.CanAdvanceTo(in.Next) {
		return nil, models.NewValidationError("Status can only move forward")
	}

	response := strings.TrimSpace(in.Response)
	if in.Next == models.ContactStatusReplied && response == "" {
		return nil, models.NewValidationError("A response is required to mark a message replied")
	}

	now := time.Now().UTC()
	switch in.Next {
	case models.ContactStatusRead:
		msg.ReadAt = &now
	case models.ContactStatusReplied:
		// A skipped read state still counts as read.
		if msg.ReadAt == nil {
			msg.ReadAt = &now
		}
		msg.RepliedAt = &now
		msg.Response = response
		msg.RespondedBy = &in.ActorID
	case models.ContactStatusArchived:
		msg.ArchivedAt = &now
	}
	msg.Status = in.Next

	if err := s.contactRepo.Update(ctx, msg); err != nil {
		return nil, err
	}
	if in.Next == models.ContactStatusReplied {
		s.notifier.ContactReply(msg, response)
	}
	return msg, nil
}

func statusKnown(s models.ContactStatus) bool {
	switch s {
	case models.ContactStatusNew, models.ContactStatusRead,
		models.ContactStatusReplied, models.ContactStatusArchived:
		return true
	}
	return false
}
