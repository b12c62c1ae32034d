package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"moment-ticketing/internal/model"
)

type ConfirmOutcome string

const (
	OutcomeNewlyConfirmed   ConfirmOutcome = "newly_confirmed"
	OutcomeAlreadyConfirmed ConfirmOutcome = "already_confirmed"
	OutcomeRejected         ConfirmOutcome = "rejected"
)

// gatewayReport carries the gateway-side identifiers of a paid session. The
// moment, user and fee amounts are deliberately absent: confirmation reads
// those from the persisted PaymentSession row only.
type gatewayReport struct {
	PaymentID string
}

var errConcurrentTransition = errors.New("payment session transitioned concurrently")

// confirmPaid turns a gateway-reported paid session into a durable
// MomentParticipant row exactly once. Both the webhook path and the client
// verification path land here, unordered and possibly concurrently; the
// composite primary key on (moment_id, user_id) plus the conditional status
// update make the second arrival a no-op.
func (s *ticketingServiceImpl) confirmPaid(ctx context.Context, gatewaySessionID string, report gatewayReport) (ConfirmOutcome, error) {
	sess, err := s.sessionRepo.FindByGatewaySessionID(ctx, gatewaySessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OutcomeRejected, ErrSessionNotFound
		}
		return OutcomeRejected, fmt.Errorf("find payment session: %w", err)
	}

	switch sess.Status {
	case model.SessionStatusCompleted:
		return OutcomeAlreadyConfirmed, nil
	case model.SessionStatusFailed, model.SessionStatusExpired:
		// Terminal states are final; a late paid report cannot revive them.
		zap.L().Warn("paid report for terminally failed session",
			zap.String("gateway_session_id", gatewaySessionID),
			zap.String("status", sess.Status))
		return OutcomeRejected, nil
	}

	var (
		outcome     ConfirmOutcome
		hostID      string
		momentTitle string
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.participantRepo.Exists(ctx, tx, sess.MomentID, sess.UserID)
		if err != nil {
			return fmt.Errorf("check existing participant: %w", err)
		}
		if exists {
			// The other path confirmed first; just settle the session.
			if _, err := s.sessionRepo.MarkTerminal(ctx, tx, gatewaySessionID, model.SessionStatusCompleted); err != nil {
				return fmt.Errorf("complete payment session: %w", err)
			}
			outcome = OutcomeAlreadyConfirmed
			return nil
		}

		err = s.participantRepo.Create(ctx, tx, &model.MomentParticipant{
			MomentID:          sess.MomentID,
			UserID:            sess.UserID,
			Status:            model.ParticipantStatusConfirmed,
			PaymentStatus:     model.ParticipantPaymentPaid,
			GatewayPaymentID:  report.PaymentID,
			GatewaySessionID:  gatewaySessionID,
			AmountPaidCents:   sess.AmountCents,
			PlatformFeeCents:  sess.PlatformFeeCents,
			OrganizerFeeCents: sess.OrganizerFeeCents,
			Currency:          sess.Currency,
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if _, err := s.sessionRepo.MarkTerminal(ctx, tx, gatewaySessionID, model.SessionStatusCompleted); err != nil {
					return fmt.Errorf("complete payment session: %w", err)
				}
				outcome = OutcomeAlreadyConfirmed
				return nil
			}
			return fmt.Errorf("insert participant: %w", err)
		}

		transitioned, err := s.sessionRepo.MarkTerminal(ctx, tx, gatewaySessionID, model.SessionStatusCompleted)
		if err != nil {
			return fmt.Errorf("complete payment session: %w", err)
		}
		if !transitioned {
			// Session reached a terminal state underneath us; roll the
			// participant insert back and re-read outside the transaction.
			return errConcurrentTransition
		}

		moment, err := s.momentRepo.FindByID(ctx, tx, sess.MomentID)
		if err != nil {
			return fmt.Errorf("find moment: %w", err)
		}
		hostID = moment.HostID
		momentTitle = moment.Title

		// Capacity can be exceeded when checkouts race: the payment has
		// already been taken, so the participant is confirmed anyway and
		// the moment is flagged for manual remediation.
		if moment.MaxParticipants > 0 {
			count, err := s.participantRepo.CountConfirmed(ctx, tx, sess.MomentID)
			if err != nil {
				return fmt.Errorf("count participants: %w", err)
			}
			if count > int64(moment.MaxParticipants) && !moment.OverCapacity {
				if err := s.momentRepo.FlagOverCapacity(ctx, tx, sess.MomentID); err != nil {
					return fmt.Errorf("flag over capacity: %w", err)
				}
				zap.L().Warn("moment confirmed over capacity",
					zap.String("moment_id", sess.MomentID),
					zap.Int64("confirmed", count),
					zap.Int("max_participants", moment.MaxParticipants))
			}
		}

		outcome = OutcomeNewlyConfirmed
		return nil
	})
	if err != nil {
		if errors.Is(err, errConcurrentTransition) {
			current, ferr := s.sessionRepo.FindByGatewaySessionID(ctx, gatewaySessionID)
			if ferr == nil && current.Status == model.SessionStatusCompleted {
				return OutcomeAlreadyConfirmed, nil
			}
			return OutcomeRejected, nil
		}
		return OutcomeRejected, err
	}

	if outcome == OutcomeNewlyConfirmed {
		s.notifyHost(ctx, hostID, momentTitle, sess)
	}

	return outcome, nil
}

// markSessionTerminal applies a failed or expired gateway report. Re-applying
// a terminal status is a no-op, never an error.
func (s *ticketingServiceImpl) markSessionTerminal(ctx context.Context, gatewaySessionID, status string) error {
	if _, err := s.sessionRepo.FindByGatewaySessionID(ctx, gatewaySessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("find payment session: %w", err)
	}

	transitioned, err := s.sessionRepo.MarkTerminal(ctx, nil, gatewaySessionID, status)
	if err != nil {
		return fmt.Errorf("mark payment session %s: %w", status, err)
	}
	if !transitioned {
		zap.L().Debug("payment session already terminal",
			zap.String("gateway_session_id", gatewaySessionID),
			zap.String("requested_status", status))
	}
	return nil
}

// notifyHost is fire-and-forget: a delivery failure is logged and never
// affects the confirmed payment.
func (s *ticketingServiceImpl) notifyHost(ctx context.Context, hostID, momentTitle string, sess *model.PaymentSession) {
	err := s.notifier.Notify(ctx, hostID,
		"Ticket sold",
		fmt.Sprintf("A participant completed payment for %q.", momentTitle),
		map[string]string{
			"moment_id":          sess.MomentID,
			"user_id":            sess.UserID,
			"gateway_session_id": sess.GatewaySessionID,
		})
	if err != nil {
		zap.L().Warn("host notification failed",
			zap.String("moment_id", sess.MomentID),
			zap.String("host_id", hostID),
			zap.Error(err))
	}
}
