package model

// GatewayCheckoutSession is the gateway's view of a hosted checkout session.
type GatewayCheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`         // open, complete, expired
	PaymentStatus string            `json:"payment_status"` // paid, unpaid
	PaymentID     string            `json:"payment_id"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

const (
	GatewaySessionOpen     = "open"
	GatewaySessionComplete = "complete"
	GatewaySessionExpired  = "expired"

	GatewayPaymentPaid   = "paid"
	GatewayPaymentUnpaid = "unpaid"
)

// GatewayWebhookEvent is the signed event envelope pushed by the gateway.
type GatewayWebhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	CreatedAt int64  `json:"created_at"`
	Data      struct {
		Object GatewayCheckoutSession `json:"object"`
	} `json:"data"`
}

const (
	EventCheckoutCompleted = "checkout.completed"
	EventPaymentSucceeded  = "payment.succeeded"
	EventPaymentFailed     = "payment.failed"
	EventCheckoutExpired   = "checkout.expired"
)
