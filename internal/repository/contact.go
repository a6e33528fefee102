package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// ContactRepository defines persistence operations for the contact inbox.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	GetByID(ctx context.Context, id uint) (*models.ContactMessage, error)
	List(ctx context.Context, status models.ContactStatus, limit, offset int) ([]*models.ContactMessage, int64, error)
	Update(ctx context.Context, msg *models.ContactMessage) error
	CountByStatus(ctx context.Context) (map[models.ContactStatus]int64, error)
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository returns a new ContactRepository implementation.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id uint) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := readDB(r.db).WithContext(ctx).First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("ContactMessage", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

// List returns inbox messages newest first, optionally filtered by status.
func (r *contactRepository) List(ctx context.Context, status models.ContactStatus, limit, offset int) ([]*models.ContactMessage, int64, error) {
	base := readDB(r.db).WithContext(ctx).Model(&models.ContactMessage{})
	if status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var msgs []*models.ContactMessage
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return msgs, total, nil
}

func (r *contactRepository) Update(ctx context.Context, msg *models.ContactMessage) error {
	if err := r.db.WithContext(ctx).Save(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contactRepository) CountByStatus(ctx context.Context) (map[models.ContactStatus]int64, error) {
	type statusCount struct {
		Status models.ContactStatus
		Count  int64
	}
	var rows []statusCount
	err := readDB(r.db).WithContext(ctx).
		Model(&models.ContactMessage{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[models.ContactStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
