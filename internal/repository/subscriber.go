package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// SubscriberRepository defines persistence operations for newsletter
// subscribers.
type SubscriberRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Subscriber, error)
	GetByToken(ctx context.Context, token string) (*models.Subscriber, error)
	Create(ctx context.Context, sub *models.Subscriber) error
	Update(ctx context.Context, sub *models.Subscriber) error
	ListActive(ctx context.Context, limit, offset int) ([]*models.Subscriber, int64, error)
}

type subscriberRepository struct {
	db *gorm.DB
}

// NewSubscriberRepository returns a new SubscriberRepository implementation.
func NewSubscriberRepository(db *gorm.DB) SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) GetByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := readDB(r.db).WithContext(ctx).Where("email = ?", email).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &sub, nil
}

func (r *subscriberRepository) GetByToken(ctx context.Context, token string) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := readDB(r.db).WithContext(ctx).Where("token = ?", token).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Subscriber", token)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &sub, nil
}

func (r *subscriberRepository) Create(ctx context.Context, sub *models.Subscriber) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateActionError("This email is already subscribed")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *subscriberRepository) Update(ctx context.Context, sub *models.Subscriber) error {
	if err := r.db.WithContext(ctx).Save(sub).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *subscriberRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.Subscriber, int64, error) {
	base := readDB(r.db).WithContext(ctx).
		Model(&models.Subscriber{}).
		Where("is_active = true")

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var subs []*models.Subscriber
	err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&subs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return subs, total, nil
}
