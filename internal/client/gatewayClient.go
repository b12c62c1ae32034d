package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"moment-ticketing/internal/config"
	"moment-ticketing/internal/model"
)

type GatewayClient interface {
	CreateCheckoutSession(ctx context.Context, params *CreateSessionParams) (*model.GatewayCheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*model.GatewayCheckoutSession, error)
	VerifySignature(signatureHeader string, body []byte) error
}

type CreateSessionParams struct {
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	ProductName string            `json:"product_name"`
	SuccessURL  string            `json:"success_url"`
	CancelURL   string            `json:"cancel_url"`
	Metadata    map[string]string `json:"metadata"`
}

type gatewayClientImpl struct {
	httpClient    *http.Client
	baseApiURL    string
	apiKey        string
	webhookSecret string
}

func NewGatewayClient(gatewayCfg *config.Gateway) GatewayClient {
	return &gatewayClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:    gatewayCfg.BaseApiURL,
		apiKey:        gatewayCfg.APIKey,
		webhookSecret: gatewayCfg.WebhookSecret,
	}
}

func (c *gatewayClientImpl) CreateCheckoutSession(ctx context.Context, params *CreateSessionParams) (*model.GatewayCheckoutSession, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/checkout/sessions",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(b))
	}

	var session model.GatewayCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	return &session, nil
}

func (c *gatewayClientImpl) GetCheckoutSession(ctx context.Context, sessionID string) (*model.GatewayCheckoutSession, error) {
	url := fmt.Sprintf("%s/v1/checkout/sessions/%s", c.baseApiURL, sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway error %d: %s", resp.StatusCode, string(b))
	}

	var session model.GatewayCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	return &session, nil
}

func (c *gatewayClientImpl) VerifySignature(signatureHeader string, body []byte) error {
	return VerifySignature(c.webhookSecret, signatureHeader, body, time.Now())
}
