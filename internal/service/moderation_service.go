package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// ModerationService implements the comment moderation queue and the
// spam/abuse report workflow.
type ModerationService struct {
	commentRepo repository.CommentRepository
	authz       *Authorizer
}

// NewModerationService returns a new ModerationService.
func NewModerationService(commentRepo repository.CommentRepository, authz *Authorizer) *ModerationService {
	return &ModerationService{commentRepo: commentRepo, authz: authz}
}

// CommentPage is one page of the moderation queue.
type CommentPage struct {
	Comments []*models.Comment `json:"comments"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ReportPage is one page of open reports.
type ReportPage struct {
	Reports  []*models.CommentReport `json:"reports"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}

// ListPending returns unapproved active comments, oldest first.
func (s *ModerationService) ListPending(ctx context.Context, actorID uint, page, pageSize int) (*CommentPage, error) {
	if err := s.authz.Require(ctx, actorID, ActionModerate, nil); err != nil {
		return nil, err
	}
	comments, total, err := s.commentRepo.ListPending(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &CommentPage{Comments: comments, Total: total, Page: page, PageSize: pageSize}, nil
}

// Approve marks a comment approved and stamps who decided and when.
func (s *ModerationService) Approve(ctx context.Context, commentID, actorID uint) (*models.Comment, error) {
	return s.setApproval(ctx, commentID, actorID, true)
}

// Disapprove withdraws approval; the comment disappears from public threads
// but keeps its place in the tree.
func (s *ModerationService) Disapprove(ctx context.Context, commentID, actorID uint) (*models.Comment, error) {
	return s.setApproval(ctx, commentID, actorID, false)
}

func (s *ModerationService) setApproval(ctx context.Context, commentID, actorID uint, approved bool) (*models.Comment, error) {
	if err := s.authz.Require(ctx, actorID, ActionModerate, nil); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment.IsApproved = approved
	comment.ModeratedBy = &actorID
	comment.ModeratedAt = &now
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	action := "approve"
	if !approved {
		action = "disapprove"
	}
	observability.ModerationActions.WithLabelValues(action).Inc()
	return comment, nil
}

// Report files a spam/abuse report. A reporter may report a comment once;
// repeats surface as a duplicate-action error, not a second row.
func (s *ModerationService) Report(ctx context.Context, commentID, reporterID uint, reason models.ReportReason, details string) (*models.CommentReport, error) {
	if !reason.Valid() {
		return nil, models.NewValidationError("Unknown report reason")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.Visible() {
		return nil, models.NewNotFoundError("Comment", commentID)
	}

	report := &models.CommentReport{
		CommentID:  commentID,
		ReporterID: reporterID,
		Reason:     reason,
		Details:    strings.TrimSpace(details),
	}
	if err := s.commentRepo.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	observability.ModerationActions.WithLabelValues("report").Inc()
	return report, nil
}

// ListOpenReports returns unresolved reports, oldest first.
func (s *ModerationService) ListOpenReports(ctx context.Context, actorID uint, page, pageSize int) (*ReportPage, error) {
	if err := s.authz.Require(ctx, actorID, ActionModerate, nil); err != nil {
		return nil, err
	}
	reports, total, err := s.commentRepo.ListOpenReports(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &ReportPage{Reports: reports, Total: total, Page: page, PageSize: pageSize}, nil
}

// ResolveReport closes a report. Resolution is one-way: a resolved report is
// never reopened, and resolving twice is a duplicate action.
func (s *ModerationService) ResolveReport(ctx context.Context, reportID, actorID uint) (*models.CommentReport, error) {
	if err := s.authz.Require(ctx, actorID, ActionModerate, nil); err != nil {
		return nil, err
	}
	report, err := s.commentRepo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Resolved {
		return nil, models.NewDuplicateActionError("Report is already resolved")
	}

	now := time.Now().UTC()
	report.Resolved = true
	report.ResolvedBy = &actorID
	report.ResolvedAt = &now
	if err := s.commentRepo.UpdateReport(ctx, report); err != nil {
		return nil, err
	}
	observability.ModerationActions.WithLabelValues("resolve").Inc()
	return report, nil
}
