package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"moment-ticketing/internal/client"
	"moment-ticketing/internal/dto"
	"moment-ticketing/internal/fee"
	"moment-ticketing/internal/model"
)

// Metadata keys handed to the gateway at session creation. The same values
// are persisted on the PaymentSession row, which is what confirmation reads.
const (
	metaMomentID          = "moment_id"
	metaUserID            = "user_id"
	metaBasePriceCents    = "base_price_cents"
	metaPlatformFeeCents  = "platform_fee_cents"
	metaOrganizerFeeCents = "organizer_fee_cents"
)

func (s *ticketingServiceImpl) InitiateCheckout(ctx context.Context, userID, momentID string) (*dto.CheckoutResponse, error) {
	moment, err := s.momentRepo.FindByID(ctx, nil, momentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRequest
		}
		return nil, fmt.Errorf("find moment: %w", err)
	}
	if !moment.PaymentRequired {
		return nil, ErrInvalidRequest
	}

	registered, err := s.participantRepo.Exists(ctx, nil, momentID, userID)
	if err != nil {
		return nil, fmt.Errorf("check existing participant: %w", err)
	}
	if registered {
		return nil, ErrAlreadyRegistered
	}

	if moment.MaxParticipants > 0 {
		count, err := s.participantRepo.CountConfirmed(ctx, nil, momentID)
		if err != nil {
			return nil, fmt.Errorf("count participants: %w", err)
		}
		if count >= int64(moment.MaxParticipants) {
			return nil, ErrMomentFull
		}
	}

	platformFee, organizerFee, err := fee.Split(moment.BasePriceCents, moment.PlatformFeePercentage)
	if err != nil {
		return nil, fmt.Errorf("split fees: %w", err)
	}

	metadata := map[string]string{
		metaMomentID:          momentID,
		metaUserID:            userID,
		metaBasePriceCents:    strconv.FormatInt(moment.BasePriceCents, 10),
		metaPlatformFeeCents:  strconv.FormatInt(platformFee, 10),
		metaOrganizerFeeCents: strconv.FormatInt(organizerFee, 10),
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, &client.CreateSessionParams{
		AmountCents: moment.BasePriceCents,
		Currency:    moment.Currency,
		ProductName: moment.Title,
		SuccessURL:  fmt.Sprintf("%s/checkout/success?session_id={CHECKOUT_SESSION_ID}", s.baseURL),
		CancelURL:   fmt.Sprintf("%s/checkout/cancelled", s.baseURL),
		Metadata:    metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	sessionMeta := make(datatypes.JSONMap, len(metadata))
	for k, v := range metadata {
		sessionMeta[k] = v
	}

	err = s.sessionRepo.Create(ctx, &model.PaymentSession{
		GatewaySessionID:  session.ID,
		UserID:            userID,
		MomentID:          momentID,
		AmountCents:       moment.BasePriceCents,
		Currency:          moment.Currency,
		PlatformFeeCents:  platformFee,
		OrganizerFeeCents: organizerFee,
		Status:            model.SessionStatusPending,
		Metadata:          sessionMeta,
	})
	if err != nil {
		return nil, fmt.Errorf("store payment session: %w", err)
	}

	return &dto.CheckoutResponse{
		CheckoutURL:      session.URL,
		GatewaySessionID: session.ID,
		FeeBreakdown: dto.FeeBreakdown{
			BasePriceCents:    moment.BasePriceCents,
			PlatformFeeCents:  platformFee,
			OrganizerFeeCents: organizerFee,
			Currency:          moment.Currency,
		},
	}, nil
}
