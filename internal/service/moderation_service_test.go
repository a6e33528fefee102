package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationService_ListPending_RequiresStaff(t *testing.T) {
	t.Parallel()

	svc := NewModerationService(&stubCommentRepo{}, staffAuthorizer(false))

	_, err := svc.ListPending(context.Background(), 3, 1, 10)
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func TestModerationService_Approve(t *testing.T) {
	t.Parallel()

	stored := &models.Comment{ID: 1, Active: true}
	commentRepo := &stubCommentRepo{
		getByID: func(ctx context.Context, id uint) (*models.Comment, error) { return stored, nil },
		update:  func(ctx context.Context, comment *models.Comment) error { return nil },
	}
	svc := NewModerationService(commentRepo, staffAuthorizer(true))

	comment, err := svc.Approve(context.Background(), 1, 9)
	require.NoError(t, err)
	assert.True(t, comment.IsApproved)
	require.NotNil(t, comment.ModeratedBy)
	assert.Equal(t, uint(9), *comment.ModeratedBy)
	assert.NotNil(t, comment.ModeratedAt)

	comment, err = svc.Disapprove(context.Background(), 1, 9)
	require.NoError(t, err)
	assert.False(t, comment.IsApproved)
}

func TestModerationService_Report(t *testing.T) {
	t.Parallel()

	visible := func(ctx context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, Active: true, IsApproved: true}, nil
	}

	t.Run("unknown reason", func(t *testing.T) {
		t.Parallel()
		svc := NewModerationService(&stubCommentRepo{}, staffAuthorizer(false))

		_, err := svc.Report(context.Background(), 1, 2, "bogus", "")
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("hidden comment", func(t *testing.T) {
		t.Parallel()
		commentRepo := &stubCommentRepo{
			getByID: func(ctx context.Context, id uint) (*models.Comment, error) {
				return &models.Comment{ID: id, Active: false, IsApproved: true}, nil
			},
		}
		svc := NewModerationService(commentRepo, staffAuthorizer(false))

		_, err := svc.Report(context.Background(), 1, 2, models.ReportReasonSpam, "")
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("files the report", func(t *testing.T) {
		t.Parallel()
		commentRepo := &stubCommentRepo{
			getByID: visible,
			createReport: func(ctx context.Context, report *models.CommentReport) error {
				report.ID = 5
				return nil
			},
		}
		svc := NewModerationService(commentRepo, staffAuthorizer(false))

		report, err := svc.Report(context.Background(), 1, 2, models.ReportReasonSpam, "  link farm  ")
		require.NoError(t, err)
		assert.Equal(t, uint(1), report.CommentID)
		assert.Equal(t, uint(2), report.ReporterID)
		assert.Equal(t, "link farm", report.Details)
	})

	t.Run("repeat report surfaces the duplicate", func(t *testing.T) {
		t.Parallel()
		commentRepo := &stubCommentRepo{
			getByID: visible,
			createReport: func(ctx context.Context, report *models.CommentReport) error {
				return models.NewDuplicateActionError("You have already reported this comment")
			},
		}
		svc := NewModerationService(commentRepo, staffAuthorizer(false))

		_, err := svc.Report(context.Background(), 1, 2, models.ReportReasonAbuse, "")
		assertAppErrorCode(t, err, models.CodeDuplicateAction)
	})
}

func TestModerationService_ResolveReport(t *testing.T) {
	t.Parallel()

	t.Run("requires staff", func(t *testing.T) {
		t.Parallel()
		svc := NewModerationService(&stubCommentRepo{}, staffAuthorizer(false))

		_, err := svc.ResolveReport(context.Background(), 1, 2)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("resolution is one-way", func(t *testing.T) {
		t.Parallel()
		stored := &models.CommentReport{ID: 1}
		commentRepo := &stubCommentRepo{
			getReport:    func(ctx context.Context, id uint) (*models.CommentReport, error) { return stored, nil },
			updateReport: func(ctx context.Context, report *models.CommentReport) error { return nil },
		}
		svc := NewModerationService(commentRepo, staffAuthorizer(true))

		report, err := svc.ResolveReport(context.Background(), 1, 9)
		require.NoError(t, err)
		assert.True(t, report.Resolved)
		require.NotNil(t, report.ResolvedBy)
		assert.Equal(t, uint(9), *report.ResolvedBy)

		_, err = svc.ResolveReport(context.Background(), 1, 9)
		assertAppErrorCode(t, err, models.CodeDuplicateAction)
	})
}
