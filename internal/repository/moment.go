package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"moment-ticketing/internal/model"
)

type MomentRepository interface {
	Create(ctx context.Context, moment *model.Moment) error
	FindByID(ctx context.Context, tx *gorm.DB, momentID string) (*model.Moment, error)
	Count(ctx context.Context) (int64, error)
	FlagOverCapacity(ctx context.Context, tx *gorm.DB, momentID string) error
}

type momentRepoImpl struct {
	db *gorm.DB
}

func NewMomentRepository(db *gorm.DB) MomentRepository {
	return &momentRepoImpl{
		db: db,
	}
}

func (r *momentRepoImpl) Create(ctx context.Context, moment *model.Moment) error {
	return r.db.WithContext(ctx).Create(moment).Error
}

func (r *momentRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, momentID string) (*model.Moment, error) {
	if tx == nil {
		tx = r.db
	}

	var moment model.Moment
	err := tx.WithContext(ctx).
		Where("id = ?", momentID).
		First(&moment).Error

	if err != nil {
		return nil, err
	}

	return &moment, nil
}

func (r *momentRepoImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Moment{}).Count(&count).Error
	return count, err
}

func (r *momentRepoImpl) FlagOverCapacity(ctx context.Context, tx *gorm.DB, momentID string) error {
	return tx.WithContext(ctx).Model(&model.Moment{}).
		Where("id = ?", momentID).
		Updates(map[string]interface{}{
			"over_capacity": true,
			"updated_at":    time.Now(),
		}).Error
}
