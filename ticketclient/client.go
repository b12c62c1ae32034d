package ticketclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// maxAttemptAge bounds how long a pending attempt is worth recovering.
	maxAttemptAge = 24 * time.Hour

	defaultTimeout = 15 * time.Second
)

// retryDelays caps transient-error retries during checkout initiation.
var retryDelays = []time.Duration{time.Second, 2 * time.Second}

// CheckoutResult mirrors the server's checkout response.
type CheckoutResult struct {
	CheckoutURL      string `json:"checkout_url"`
	GatewaySessionID string `json:"gateway_session_id"`
	FeeBreakdown     struct {
		BasePriceCents    int64  `json:"base_price_cents"`
		PlatformFeeCents  int64  `json:"platform_fee_cents"`
		OrganizerFeeCents int64  `json:"organizer_fee_cents"`
		Currency          string `json:"currency"`
	} `json:"fee_breakdown"`
}

// VerifyResult mirrors the server's verification response.
type VerifyResult struct {
	Success                bool   `json:"success"`
	Status                 string `json:"status"`
	ParticipationConfirmed bool   `json:"participation_confirmed"`
}

// APIError is a structured rejection from the server. Rejections are the
// caller's fault and are never retried.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server rejected request (%d %s): %s", e.StatusCode, e.Code, e.Message)
}

// Client is the browser-side counterpart of the payment API. It remembers its
// last pending checkout so a lost redirect can be recovered on the next call.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	store      AttemptStore
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL, token string, store AttemptStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      store,
		logger:     zap.L(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InitiateCheckout asks the server for a checkout session and remembers it as
// pending until verification reaches a terminal state. Any earlier pending
// attempt is swept first so an interrupted purchase settles before a new one
// starts. Transient failures are retried a bounded number of times; each retry
// issues a fresh request so the server re-runs its eligibility checks.
func (c *Client) InitiateCheckout(ctx context.Context, momentID string) (*CheckoutResult, error) {
	if err := c.Sweep(ctx); err != nil {
		c.logger.Warn("recovery sweep failed, continuing with checkout", zap.Error(err))
	}

	var result CheckoutResult
	path := fmt.Sprintf("/api/moments/%s/checkout", momentID)
	err := c.withRetries(ctx, func() error {
		return c.post(ctx, path, nil, &result)
	})
	if err != nil {
		return nil, err
	}

	attempt := &PendingAttempt{
		GatewaySessionID: result.GatewaySessionID,
		MomentID:         momentID,
		TimestampMillis:  c.now().UnixMilli(),
	}
	if err := c.store.Save(attempt); err != nil {
		c.logger.Warn("could not persist pending attempt",
			zap.String("gateway_session_id", result.GatewaySessionID),
			zap.Error(err))
	}
	return &result, nil
}

// VerifyPayment asks the server to settle the session against the gateway and
// drops the local pending record once the session is terminal.
func (c *Client) VerifyPayment(ctx context.Context, gatewaySessionID string) (*VerifyResult, error) {
	var result VerifyResult
	body := map[string]string{"gateway_session_id": gatewaySessionID}
	if err := c.post(ctx, "/api/payments/verify", body, &result); err != nil {
		return nil, err
	}

	if result.Status != "pending" {
		c.clearIfCurrent(gatewaySessionID)
	}
	return &result, nil
}

// Sweep settles the locally remembered pending attempt, if any. It runs once
// per call, on app resume and before each new checkout. The record is dropped
// when the session reaches a terminal state, is unknown to the server, or is
// older than the recovery window.
func (c *Client) Sweep(ctx context.Context) error {
	attempt, err := c.store.Load()
	if err != nil {
		return err
	}
	if attempt == nil {
		return nil
	}

	age := c.now().Sub(time.UnixMilli(attempt.TimestampMillis))
	if age > maxAttemptAge {
		c.logger.Info("discarding stale pending attempt",
			zap.String("gateway_session_id", attempt.GatewaySessionID),
			zap.Duration("age", age))
		return c.store.Clear()
	}

	result, err := c.VerifyPayment(ctx, attempt.GatewaySessionID)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return c.store.Clear()
		}
		return err
	}

	if result.ParticipationConfirmed {
		c.logger.Info("recovered interrupted checkout",
			zap.String("gateway_session_id", attempt.GatewaySessionID),
			zap.String("moment_id", attempt.MomentID))
	}
	return nil
}

func (c *Client) clearIfCurrent(gatewaySessionID string) {
	attempt, err := c.store.Load()
	if err != nil || attempt == nil || attempt.GatewaySessionID != gatewaySessionID {
		return
	}
	if err := c.store.Clear(); err != nil {
		c.logger.Warn("could not clear pending attempt", zap.Error(err))
	}
}

func (c *Client) withRetries(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = call()
		if err == nil || !isTransient(err) || attempt >= len(retryDelays) {
			return err
		}
		c.logger.Warn("transient checkout failure, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", retryDelays[attempt]),
			zap.Error(err))
		select {
		case <-time.After(retryDelays[attempt]):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// isTransient reports whether the failure is worth retrying. Structured
// rejections below 500 are the caller's fault and never retried; server
// errors and plain network failures are.
func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError ||
			apiErr.StatusCode == http.StatusBadGateway
	}
	return true
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
			apiErr.Message = string(data)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
