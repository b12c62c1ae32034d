package repository

import (
	"context"

	"gorm.io/gorm"

	"moment-ticketing/internal/model"
)

type ParticipantRepository interface {
	Exists(ctx context.Context, tx *gorm.DB, momentID, userID string) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, participant *model.MomentParticipant) error
	CountConfirmed(ctx context.Context, tx *gorm.DB, momentID string) (int64, error)
}

type participantRepoImpl struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepoImpl{
		db: db,
	}
}

func (r *participantRepoImpl) Exists(ctx context.Context, tx *gorm.DB, momentID, userID string) (bool, error) {
	if tx == nil {
		tx = r.db
	}

	var count int64
	err := tx.WithContext(ctx).Model(&model.MomentParticipant{}).
		Where("moment_id = ? AND user_id = ?", momentID, userID).
		Count(&count).Error

	return count > 0, err
}

func (r *participantRepoImpl) Create(ctx context.Context, tx *gorm.DB, participant *model.MomentParticipant) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(participant).Error
}

func (r *participantRepoImpl) CountConfirmed(ctx context.Context, tx *gorm.DB, momentID string) (int64, error) {
	if tx == nil {
		tx = r.db
	}

	var count int64
	err := tx.WithContext(ctx).Model(&model.MomentParticipant{}).
		Where("moment_id = ?", momentID).
		Where("status = ?", model.ParticipantStatusConfirmed).
		Count(&count).Error

	return count, err
}
