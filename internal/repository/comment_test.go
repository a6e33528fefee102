package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func expectVoteTallies(mock sqlmock.Sqlmock, commentID, up, down int) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "comment_votes" WHERE comment_id = $1 AND value = 1`)).
		WithArgs(commentID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(up))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "comment_votes" WHERE comment_id = $1 AND value = -1`)).
		WithArgs(commentID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(down))
}

func TestCommentRepository_SetVote_FirstVoteInserts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comment_votes" WHERE comment_id = $1 AND user_id = $2`)).
		WithArgs(5, 7, 1).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comment_votes"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	expectVoteTallies(mock, 5, 3, 1)
	mock.ExpectCommit()

	result, err := repo.SetVote(context.Background(), 5, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, &models.VoteResult{Upvotes: 3, Downvotes: 1, UserVote: 1}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_SetVote_RepeatRemovesTheRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	existing := sqlmock.NewRows([]string{"id", "comment_id", "user_id", "value"}).
		AddRow(11, 5, 7, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comment_votes" WHERE comment_id = $1 AND user_id = $2`)).
		WithArgs(5, 7, 1).
		WillReturnRows(existing)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comment_votes" WHERE "comment_votes"."id" = $1`)).
		WithArgs(11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectVoteTallies(mock, 5, 2, 1)
	mock.ExpectCommit()

	// Double-submitting the same value nets out to no vote.
	result, err := repo.SetVote(context.Background(), 5, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.UserVote)
	assert.Equal(t, 2, result.Upvotes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_SetVote_OppositeReplaces(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	existing := sqlmock.NewRows([]string{"id", "comment_id", "user_id", "value"}).
		AddRow(11, 5, 7, -1)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comment_votes" WHERE comment_id = $1 AND user_id = $2`)).
		WithArgs(5, 7, 1).
		WillReturnRows(existing)
	// The existing row is updated in place, never duplicated.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "comment_votes" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectVoteTallies(mock, 5, 4, 0)
	mock.ExpectCommit()

	result, err := repo.SetVote(context.Background(), 5, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, &models.VoteResult{Upvotes: 4, Downvotes: 0, UserVote: 1}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_CreateReport_DuplicateIsDuplicateAction(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comment_reports"`)).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "idx_comment_report_pair"`))
	mock.ExpectRollback()

	err := repo.CreateReport(context.Background(), &models.CommentReport{
		CommentID:  5,
		ReporterID: 7,
		Reason:     models.ReportReasonSpam,
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeDuplicateAction, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_GetVote_MissingIsNil(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "comment_votes" WHERE comment_id = $1 AND user_id = $2`)).
		WithArgs(5, 7, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	vote, err := repo.GetVote(context.Background(), 5, 7)
	assert.NoError(t, err)
	assert.Nil(t, vote)
	assert.NoError(t, mock.ExpectationsWereMet())
}
