package dto

type FeeBreakdown struct {
	BasePriceCents    int64  `json:"base_price_cents"`
	PlatformFeeCents  int64  `json:"platform_fee_cents"`
	OrganizerFeeCents int64  `json:"organizer_fee_cents"`
	Currency          string `json:"currency"`
}

type CheckoutResponse struct {
	CheckoutURL      string       `json:"checkout_url"`
	GatewaySessionID string       `json:"gateway_session_id"`
	FeeBreakdown     FeeBreakdown `json:"fee_breakdown"`
}

type VerifyRequest struct {
	GatewaySessionID string `json:"gateway_session_id"`
}

type VerifyResponse struct {
	Success                bool   `json:"success"`
	Status                 string `json:"status"` // pending, paid, failed, expired
	ParticipationConfirmed bool   `json:"participation_confirmed"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
