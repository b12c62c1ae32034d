package ticketclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func shortRetryDelays(t *testing.T) {
	t.Helper()
	saved := retryDelays
	retryDelays = []time.Duration{time.Millisecond, 2 * time.Millisecond}
	t.Cleanup(func() { retryDelays = saved })
}

func newTestClient(t *testing.T, server *httptest.Server, store AttemptStore) *Client {
	t.Helper()
	if store == nil {
		store = NewMemoryAttemptStore()
	}
	return NewClient(server.URL, "token-1", store,
		WithHTTPClient(server.Client()),
		WithLogger(zap.NewNop()))
}

func TestFileAttemptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	store := NewFileAttemptStore(path)

	t.Run("empty store loads nil", func(t *testing.T) {
		attempt, err := store.Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attempt != nil {
			t.Fatalf("expected nil attempt, got %+v", attempt)
		}
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		saved := &PendingAttempt{
			GatewaySessionID: "cs_1",
			MomentID:         "moment-1",
			TimestampMillis:  1756700000000,
		}
		if err := store.Save(saved); err != nil {
			t.Fatalf("save: %v", err)
		}
		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if loaded == nil || *loaded != *saved {
			t.Fatalf("expected %+v, got %+v", saved, loaded)
		}
	})

	t.Run("clear removes the record", func(t *testing.T) {
		if err := store.Clear(); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("second clear should be a no-op: %v", err)
		}
		attempt, err := store.Load()
		if err != nil || attempt != nil {
			t.Fatalf("expected empty store, got %+v, %v", attempt, err)
		}
	})

	t.Run("corrupt record is treated as absent", func(t *testing.T) {
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatalf("seed corrupt file: %v", err)
		}
		attempt, err := store.Load()
		if err != nil || attempt != nil {
			t.Fatalf("expected corrupt record dropped, got %+v, %v", attempt, err)
		}
	})
}

func TestInitiateCheckout(t *testing.T) {
	t.Run("records the session as pending", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/moments/moment-1/checkout" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
				t.Errorf("unexpected authorization header %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"checkout_url": "https://gateway.test/pay/cs_1",
				"gateway_session_id": "cs_1",
				"fee_breakdown": {"base_price_cents": 2000, "platform_fee_cents": 200, "organizer_fee_cents": 1800, "currency": "USD"}
			}`))
		}))
		defer server.Close()

		store := NewMemoryAttemptStore()
		client := newTestClient(t, server, store)

		result, err := client.InitiateCheckout(context.Background(), "moment-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.CheckoutURL != "https://gateway.test/pay/cs_1" {
			t.Fatalf("unexpected checkout url %s", result.CheckoutURL)
		}
		if result.FeeBreakdown.OrganizerFeeCents != 1800 {
			t.Fatalf("unexpected fee breakdown %+v", result.FeeBreakdown)
		}

		attempt, err := store.Load()
		if err != nil || attempt == nil {
			t.Fatalf("expected pending attempt saved, got %+v, %v", attempt, err)
		}
		if attempt.GatewaySessionID != "cs_1" || attempt.MomentID != "moment-1" {
			t.Fatalf("unexpected attempt %+v", attempt)
		}
	})

	t.Run("retries transient failures with fresh requests", func(t *testing.T) {
		shortRetryDelays(t)

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(`{"code":"GatewayUnavailable","message":"gateway unavailable: timeout"}`))
				return
			}
			w.Write([]byte(`{"checkout_url":"https://gateway.test/pay/cs_2","gateway_session_id":"cs_2"}`))
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		result, err := client.InitiateCheckout(context.Background(), "moment-1")
		if err != nil {
			t.Fatalf("expected success after retries, got %v", err)
		}
		if result.GatewaySessionID != "cs_2" {
			t.Fatalf("unexpected session %s", result.GatewaySessionID)
		}
		if got := calls.Load(); got != 3 {
			t.Fatalf("expected 3 requests, got %d", got)
		}
	})

	t.Run("gives up after bounded retries", func(t *testing.T) {
		shortRetryDelays(t)

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		store := NewMemoryAttemptStore()
		client := newTestClient(t, server, store)
		_, err := client.InitiateCheckout(context.Background(), "moment-1")
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadGateway {
			t.Fatalf("expected 502 api error, got %v", err)
		}
		if got := calls.Load(); got != 3 {
			t.Fatalf("expected 3 requests, got %d", got)
		}
		if attempt, _ := store.Load(); attempt != nil {
			t.Fatalf("failed checkout must not record an attempt, got %+v", attempt)
		}
	})

	t.Run("rejections are not retried", func(t *testing.T) {
		shortRetryDelays(t)

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"code":"AlreadyRegistered","message":"already registered"}`))
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		_, err := client.InitiateCheckout(context.Background(), "moment-1")
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Code != "AlreadyRegistered" {
			t.Fatalf("expected AlreadyRegistered rejection, got %v", err)
		}
		if got := calls.Load(); got != 1 {
			t.Fatalf("rejection must not be retried, got %d requests", got)
		}
	})

	t.Run("settles a previous pending attempt first", func(t *testing.T) {
		var order []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, r.URL.Path)
			switch r.URL.Path {
			case "/api/payments/verify":
				w.Write([]byte(`{"success":true,"status":"paid","participation_confirmed":true}`))
			default:
				w.Write([]byte(`{"checkout_url":"https://gateway.test/pay/cs_2","gateway_session_id":"cs_2"}`))
			}
		}))
		defer server.Close()

		store := NewMemoryAttemptStore()
		store.Save(&PendingAttempt{
			GatewaySessionID: "cs_1",
			MomentID:         "moment-0",
			TimestampMillis:  time.Now().UnixMilli(),
		})

		client := newTestClient(t, server, store)
		if _, err := client.InitiateCheckout(context.Background(), "moment-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(order) != 2 || order[0] != "/api/payments/verify" {
			t.Fatalf("expected verify before checkout, got %v", order)
		}
		attempt, _ := store.Load()
		if attempt == nil || attempt.GatewaySessionID != "cs_2" {
			t.Fatalf("expected new attempt recorded, got %+v", attempt)
		}
	})
}

func TestVerifyPayment(t *testing.T) {
	newServer := func(status string, confirmed bool) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":` + boolJSON(status == "paid") +
				`,"status":"` + status + `","participation_confirmed":` + boolJSON(confirmed) + `}`))
		}))
	}

	t.Run("terminal status clears the pending record", func(t *testing.T) {
		server := newServer("paid", true)
		defer server.Close()

		store := NewMemoryAttemptStore()
		store.Save(&PendingAttempt{GatewaySessionID: "cs_1", TimestampMillis: time.Now().UnixMilli()})

		client := newTestClient(t, server, store)
		result, err := client.VerifyPayment(context.Background(), "cs_1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.ParticipationConfirmed {
			t.Fatalf("expected confirmation, got %+v", result)
		}
		if attempt, _ := store.Load(); attempt != nil {
			t.Fatalf("expected record cleared, got %+v", attempt)
		}
	})

	t.Run("pending status keeps the record", func(t *testing.T) {
		server := newServer("pending", false)
		defer server.Close()

		store := NewMemoryAttemptStore()
		store.Save(&PendingAttempt{GatewaySessionID: "cs_1", TimestampMillis: time.Now().UnixMilli()})

		client := newTestClient(t, server, store)
		if _, err := client.VerifyPayment(context.Background(), "cs_1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attempt, _ := store.Load(); attempt == nil {
			t.Fatalf("pending session must keep its recovery record")
		}
	})

	t.Run("a different session leaves the record alone", func(t *testing.T) {
		server := newServer("expired", false)
		defer server.Close()

		store := NewMemoryAttemptStore()
		store.Save(&PendingAttempt{GatewaySessionID: "cs_1", TimestampMillis: time.Now().UnixMilli()})

		client := newTestClient(t, server, store)
		if _, err := client.VerifyPayment(context.Background(), "cs_other"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attempt, _ := store.Load(); attempt == nil || attempt.GatewaySessionID != "cs_1" {
			t.Fatalf("unrelated verification must not clear the record, got %+v", attempt)
		}
	})
}

func TestSweep(t *testing.T) {
	t.Run("no record is a no-op", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("sweep with no record must not call the server")
		}))
		defer server.Close()

		client := newTestClient(t, server, nil)
		if err := client.Sweep(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("stale record is discarded without a call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("stale record must not call the server")
		}))
		defer server.Close()

		store := NewMemoryAttemptStore()
		store.Save(&PendingAttempt{
			GatewaySessionID: "cs_old",
			TimestampMillis:  time.Now().Add(-25 * time.Hour).UnixMilli(),
		})

		client := newTestClient(t, server, store)
		if err := client.Sweep(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attempt, _ := store.Load(); attempt != nil {
			t.Fatalf("expected stale record discarded, got %+v", attempt)
		}
	})

	t.Run("record just inside the window is verified", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Write([]byte(`{"success":true,"status":"paid","participation_confirmed":true}`))
		}))
		defer server.Close()

		store := NewMemoryAttemptStore()
		store.Save(&PendingAttempt{
			GatewaySessionID: "cs_1",
			TimestampMillis:  time.Now().Add(-23 * time.Hour).UnixMilli(),
		})

		client := newTestClient(t, server, store)
		if err := client.Sweep(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls.Load() != 1 {
			t.Fatalf("expected one verification call, got %d", calls.Load())
		}
		if attempt, _ := store.Load(); attempt != nil {
			t.Fatalf("expected paid record cleared, got %+v", attempt)
		}
	})

	t.Run("unknown session is discarded", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"code":"SessionNotFound","message":"session not found"}`))
		}))
		defer server.Close()

		store := NewMemoryAttemptStore()
		store.Save(&PendingAttempt{GatewaySessionID: "cs_gone", TimestampMillis: time.Now().UnixMilli()})

		client := newTestClient(t, server, store)
		if err := client.Sweep(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attempt, _ := store.Load(); attempt != nil {
			t.Fatalf("expected unknown session discarded, got %+v", attempt)
		}
	})

	t.Run("still pending record survives the sweep", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false,"status":"pending","participation_confirmed":false}`))
		}))
		defer server.Close()

		store := NewMemoryAttemptStore()
		store.Save(&PendingAttempt{GatewaySessionID: "cs_1", TimestampMillis: time.Now().UnixMilli()})

		client := newTestClient(t, server, store)
		if err := client.Sweep(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if attempt, _ := store.Load(); attempt == nil {
			t.Fatalf("pending record must survive the sweep")
		}
	})
}

func boolJSON(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
