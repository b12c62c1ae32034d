package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"moment-ticketing/internal/client"
	"moment-ticketing/internal/dto"
	"moment-ticketing/internal/notify"
	"moment-ticketing/internal/repository"
)

// Rejection kinds surfaced to callers. Handlers map these to HTTP codes.
var (
	ErrInvalidRequest     = errors.New("moment not found or payment not required")
	ErrAlreadyRegistered  = errors.New("already registered for this moment")
	ErrMomentFull         = errors.New("moment has reached its participant limit")
	ErrUnauthorized       = errors.New("payment session belongs to another user")
	ErrSessionNotFound    = errors.New("payment session not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrInvalidEvent       = errors.New("malformed gateway event")
)

type TicketingService interface {
	InitiateCheckout(ctx context.Context, userID, momentID string) (*dto.CheckoutResponse, error)
	VerifyPayment(ctx context.Context, userID, gatewaySessionID string) (*dto.VerifyResponse, error)
	HandleWebhookEvent(ctx context.Context, signatureHeader string, body []byte) error
}

type ticketingServiceImpl struct {
	db               *gorm.DB
	gateway          client.GatewayClient
	notifier         notify.Notifier
	baseURL          string
	momentRepo       repository.MomentRepository
	sessionRepo      repository.PaymentSessionRepository
	participantRepo  repository.ParticipantRepository
	webhookEventRepo repository.WebhookEventRepository
}

func NewTicketingService(
	db *gorm.DB,
	gateway client.GatewayClient,
	notifier notify.Notifier,
	baseURL string,
	momentRepo repository.MomentRepository,
	sessionRepo repository.PaymentSessionRepository,
	participantRepo repository.ParticipantRepository,
	webhookEventRepo repository.WebhookEventRepository,
) TicketingService {
	return &ticketingServiceImpl{
		db:               db,
		gateway:          gateway,
		notifier:         notifier,
		baseURL:          baseURL,
		momentRepo:       momentRepo,
		sessionRepo:      sessionRepo,
		participantRepo:  participantRepo,
		webhookEventRepo: webhookEventRepo,
	}
}
