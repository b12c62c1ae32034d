package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"moment-ticketing/internal/model"
)

// HandleWebhookEvent processes one signed gateway event. Signature
// verification happens before anything else; a forged body never reaches the
// confirmation path. Redelivered events short-circuit via the event ledger.
func (s *ticketingServiceImpl) HandleWebhookEvent(ctx context.Context, signatureHeader string, body []byte) error {
	if err := s.gateway.VerifySignature(signatureHeader, body); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	var event model.GatewayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if event.ID == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalidEvent)
	}

	processed, err := s.webhookEventRepo.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check processed event: %w", err)
	}
	if processed {
		zap.L().Debug("gateway event already processed", zap.String("event_id", event.ID))
		return nil
	}

	if err := s.dispatchEvent(ctx, &event); err != nil {
		return err
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, event.ID, event.EventType); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}

func (s *ticketingServiceImpl) dispatchEvent(ctx context.Context, event *model.GatewayWebhookEvent) error {
	sessionID := event.Data.Object.ID
	if sessionID == "" {
		return fmt.Errorf("%w: missing session id", ErrInvalidEvent)
	}

	var err error
	switch event.EventType {
	case model.EventCheckoutCompleted, model.EventPaymentSucceeded:
		_, err = s.confirmPaid(ctx, sessionID, gatewayReport{PaymentID: event.Data.Object.PaymentID})
	case model.EventPaymentFailed:
		err = s.markSessionTerminal(ctx, sessionID, model.SessionStatusFailed)
	case model.EventCheckoutExpired:
		err = s.markSessionTerminal(ctx, sessionID, model.SessionStatusExpired)
	default:
		// Unrecognized event types are ignored for forward compatibility.
		zap.L().Info("ignoring unrecognized gateway event",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.EventType))
		return nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		// The gateway knows sessions we never created (or that another
		// deployment owns). Acknowledge so it stops redelivering.
		zap.L().Warn("gateway event for unknown session",
			zap.String("event_id", event.ID),
			zap.String("gateway_session_id", sessionID))
		return nil
	}
	return err
}
