package client

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":"evt_1","event_type":"checkout.completed"}`)
	now := time.Unix(1756700000, 0)

	t.Run("valid signature", func(t *testing.T) {
		header := Sign(secret, body, now)
		if err := VerifySignature(secret, header, body, now); err != nil {
			t.Fatalf("expected valid signature, got %v", err)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		header := Sign(secret, body, now)
		tampered := []byte(`{"id":"evt_1","event_type":"payment.succeeded"}`)
		if err := VerifySignature(secret, header, tampered, now); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := Sign("whsec_other", body, now)
		if err := VerifySignature(secret, header, body, now); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("stale timestamp", func(t *testing.T) {
		header := Sign(secret, body, now.Add(-6*time.Minute))
		if err := VerifySignature(secret, header, body, now); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("future timestamp", func(t *testing.T) {
		header := Sign(secret, body, now.Add(6*time.Minute))
		if err := VerifySignature(secret, header, body, now); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature, got %v", err)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		for _, header := range []string{"", "t=abc,v1=00", "v1=00", "t=1756700000", "garbage"} {
			if err := VerifySignature(secret, header, body, now); !errors.Is(err, ErrInvalidSignature) {
				t.Fatalf("header %q: expected ErrInvalidSignature, got %v", header, err)
			}
		}
	})

	t.Run("timestamp inside tolerance", func(t *testing.T) {
		header := Sign(secret, body, now.Add(-4*time.Minute))
		if err := VerifySignature(secret, header, body, now); err != nil {
			t.Fatalf("expected valid signature, got %v", err)
		}
	})
}

func TestSignHeaderShape(t *testing.T) {
	header := Sign("s", []byte("b"), time.Unix(42, 0))
	if !strings.HasPrefix(header, "t=42,v1=") {
		t.Fatalf("unexpected header shape: %q", header)
	}
}
