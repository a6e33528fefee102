package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines persistence operations for the author follow graph.
type FollowRepository interface {
	Insert(ctx context.Context, followerID, followeeID uint) (bool, error)
	Remove(ctx context.Context, followerID, followeeID uint) (bool, error)
	Exists(ctx context.Context, followerID, followeeID uint) (bool, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	Stats(ctx context.Context, userID uint) (*models.AuthorStats, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Insert adds the edge idempotently. ON CONFLICT DO NOTHING makes concurrent
// toggles race-safe; the return value reports whether a row was created.
func (r *followRepository) Insert(ctx context.Context, followerID, followeeID uint) (bool, error) {
	follow := models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&follow)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Remove deletes the edge; the return value reports whether a row existed.
func (r *followRepository) Remove(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := readDB(r.db).WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Stats recomputes all author counters at read time. Nothing is materialized
// or cached, so the numbers are always consistent with the underlying tables.
func (r *followRepository) Stats(ctx context.Context, userID uint) (*models.AuthorStats, error) {
	stats := &models.AuthorStats{}
	db := readDB(r.db).WithContext(ctx)

	row := db.Raw(`SELECT COUNT(*), COALESCE(SUM(view_count), 0)
		FROM posts
		WHERE author_id = ? AND status = ? AND deleted_at IS NULL`,
		userID, models.PostStatusPublished).Row()
	if err := row.Scan(&stats.PostCount, &stats.TotalViews); err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := db.Model(&models.Comment{}).
		Where("active = true AND is_approved = true").
		Where("post_id IN (SELECT id FROM posts WHERE author_id = ? AND status = ? AND deleted_at IS NULL)",
			userID, models.PostStatusPublished).
		Count(&stats.TotalComments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	if err := db.Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&stats.FollowerCount).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}
