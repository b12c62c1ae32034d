package client

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// signatureTolerance bounds how old a signed timestamp may be, limiting
// replay of captured webhook deliveries.
const signatureTolerance = 5 * time.Minute

// Sign computes the signature header the gateway sends with webhook events:
// an HMAC-SHA256 of "<timestamp>.<body>" keyed by the shared secret, in the
// form "t=<unix>,v1=<hex>".
func Sign(secret string, body []byte, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// VerifySignature checks the signature header against the raw body. The
// comparison is constant-time and the signed timestamp must be within
// tolerance of now.
func VerifySignature(secret, header string, body []byte, now time.Time) error {
	var ts int64
	var sig string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}
			ts = parsed
		case "v1":
			sig = value
		}
	}
	if ts == 0 || sig == "" {
		return fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}

	at := time.Unix(ts, 0)
	if now.Sub(at) > signatureTolerance || at.Sub(now) > signatureTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := Sign(secret, body, at)
	_, expectedSig, _ := strings.Cut(expected, "v1=")
	if !hmac.Equal([]byte(expectedSig), []byte(sig)) {
		return ErrInvalidSignature
	}
	return nil
}
