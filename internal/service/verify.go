package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"moment-ticketing/internal/dto"
	"moment-ticketing/internal/model"
)

// VerifyPayment is the recovery path for the returning browser: webhook
// delivery may not have arrived yet, so the caller gets a synchronous answer
// built from the gateway's own view of the session.
func (s *ticketingServiceImpl) VerifyPayment(ctx context.Context, userID, gatewaySessionID string) (*dto.VerifyResponse, error) {
	sess, err := s.sessionRepo.FindByGatewaySessionID(ctx, gatewaySessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("find payment session: %w", err)
	}
	if sess.UserID != userID {
		return nil, ErrUnauthorized
	}

	gatewaySession, err := s.gateway.GetCheckoutSession(ctx, gatewaySessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	switch {
	case gatewaySession.PaymentStatus == model.GatewayPaymentPaid:
		outcome, err := s.confirmPaid(ctx, gatewaySessionID, gatewayReport{PaymentID: gatewaySession.PaymentID})
		if err != nil {
			return nil, err
		}
		confirmed := outcome == OutcomeNewlyConfirmed || outcome == OutcomeAlreadyConfirmed
		return &dto.VerifyResponse{
			Success:                confirmed,
			Status:                 model.GatewayPaymentPaid,
			ParticipationConfirmed: confirmed,
		}, nil

	case gatewaySession.Status == model.GatewaySessionExpired:
		if err := s.markSessionTerminal(ctx, gatewaySessionID, model.SessionStatusExpired); err != nil {
			return nil, err
		}
		return &dto.VerifyResponse{Success: true, Status: model.SessionStatusExpired}, nil

	case gatewaySession.Status == model.GatewaySessionComplete:
		// Checkout finished without a payment: the gateway canceled it.
		if err := s.markSessionTerminal(ctx, gatewaySessionID, model.SessionStatusFailed); err != nil {
			return nil, err
		}
		return &dto.VerifyResponse{Success: true, Status: model.SessionStatusFailed}, nil

	default:
		// Still open; the user may yet complete checkout.
		return &dto.VerifyResponse{Success: true, Status: model.SessionStatusPending}, nil
	}
}
