package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// voteTallies is the SELECT fragment that recomputes both counters per row.
const voteTallies = "comments.*, " +
	"(SELECT COUNT(*) FROM comment_votes WHERE comment_votes.comment_id = comments.id AND comment_votes.value = 1) as upvotes, " +
	"(SELECT COUNT(*) FROM comment_votes WHERE comment_votes.comment_id = comments.id AND comment_votes.value = -1) as downvotes"

// CommentRepository defines persistence operations for comments, votes, and
// reports.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListVisibleByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	ListPending(ctx context.Context, limit, offset int) ([]*models.Comment, int64, error)
	Update(ctx context.Context, comment *models.Comment) error

	SetVote(ctx context.Context, commentID, userID uint, value int) (*models.VoteResult, error)
	GetVote(ctx context.Context, commentID, userID uint) (*models.CommentVote, error)

	CreateReport(ctx context.Context, report *models.CommentReport) error
	GetReport(ctx context.Context, id uint) (*models.CommentReport, error)
	ListOpenReports(ctx context.Context, limit, offset int) ([]*models.CommentReport, int64, error)
	UpdateReport(ctx context.Context, report *models.CommentReport) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CommentTreeKey(comment.PostID))
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := readDB(r.db).WithContext(ctx).
		Select(voteTallies).
		Preload("Author").
		First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListVisibleByPost returns all visible comments of a post, oldest first, as a
// flat slice. The service layer links them into a tree.
func (r *commentRepository) ListVisibleByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := readDB(r.db).WithContext(ctx).
		Select(voteTallies).
		Preload("Author").
		Where("post_id = ? AND active = true AND is_approved = true", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// ListPending returns active comments awaiting approval, oldest first.
func (r *commentRepository) ListPending(ctx context.Context, limit, offset int) ([]*models.Comment, int64, error) {
	base := readDB(r.db).WithContext(ctx).
		Model(&models.Comment{}).
		Where("active = true AND is_approved = false")

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var comments []*models.Comment
	err := base.Session(&gorm.Session{}).
		Preload("Author").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Save(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CommentTreeKey(comment.PostID))
	return nil
}

// SetVote applies the toggle semantics inside one transaction: a repeated
// identical vote removes the row, an opposite vote overwrites it, otherwise a
// new row is created. The returned tallies are computed in the same
// transaction so the caller sees its own write.
func (r *commentRepository) SetVote(ctx context.Context, commentID, userID uint, value int) (*models.VoteResult, error) {
	result := &models.VoteResult{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.CommentVote
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("comment_id = ? AND user_id = ?", commentID, userID).
			First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.CommentVote{CommentID: commentID, UserID: userID, Value: value}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			result.UserVote = value
		case err != nil:
			return err
		case existing.Value == value:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			result.UserVote = 0
		default:
			existing.Value = value
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result.UserVote = value
		}

		var up, down int64
		if err := tx.Model(&models.CommentVote{}).
			Where("comment_id = ? AND value = 1", commentID).Count(&up).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.CommentVote{}).
			Where("comment_id = ? AND value = -1", commentID).Count(&down).Error; err != nil {
			return err
		}
		result.Upvotes, result.Downvotes = int(up), int(down)
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return result, nil
}

func (r *commentRepository) GetVote(ctx context.Context, commentID, userID uint) (*models.CommentVote, error) {
	var vote models.CommentVote
	err := readDB(r.db).WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &vote, nil
}

// CreateReport inserts a report; the (comment, reporter) unique index turns a
// repeat into a DuplicateAction error.
func (r *commentRepository) CreateReport(ctx context.Context, report *models.CommentReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateActionError("You have already reported this comment")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetReport(ctx context.Context, id uint) (*models.CommentReport, error) {
	var report models.CommentReport
	err := readDB(r.db).WithContext(ctx).Preload("Comment").First(&report, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &report, nil
}

func (r *commentRepository) ListOpenReports(ctx context.Context, limit, offset int) ([]*models.CommentReport, int64, error) {
	base := readDB(r.db).WithContext(ctx).
		Model(&models.CommentReport{}).
		Where("resolved = false")

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var reports []*models.CommentReport
	err := base.Session(&gorm.Session{}).
		Preload("Comment").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return reports, total, nil
}

func (r *commentRepository) UpdateReport(ctx context.Context, report *models.CommentReport) error {
	if err := r.db.WithContext(ctx).Save(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
