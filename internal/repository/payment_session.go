package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"moment-ticketing/internal/model"
)

type PaymentSessionRepository interface {
	Create(ctx context.Context, session *model.PaymentSession) error
	FindByGatewaySessionID(ctx context.Context, gatewaySessionID string) (*model.PaymentSession, error)
	// MarkTerminal moves a pending session to the given terminal status.
	// Returns false when no transition happened because the session was
	// already terminal; terminal states are never overwritten.
	MarkTerminal(ctx context.Context, tx *gorm.DB, gatewaySessionID, status string) (bool, error)
}

type paymentSessionRepoImpl struct {
	db *gorm.DB
}

func NewPaymentSessionRepository(db *gorm.DB) PaymentSessionRepository {
	return &paymentSessionRepoImpl{
		db: db,
	}
}

func (r *paymentSessionRepoImpl) Create(ctx context.Context, session *model.PaymentSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *paymentSessionRepoImpl) FindByGatewaySessionID(ctx context.Context, gatewaySessionID string) (*model.PaymentSession, error) {
	var session model.PaymentSession
	err := r.db.WithContext(ctx).
		Where("gateway_session_id = ?", gatewaySessionID).
		First(&session).Error

	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *paymentSessionRepoImpl) MarkTerminal(ctx context.Context, tx *gorm.DB, gatewaySessionID, status string) (bool, error) {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).Model(&model.PaymentSession{}).
		Where("gateway_session_id = ? AND status = ?", gatewaySessionID, model.SessionStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
