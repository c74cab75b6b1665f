// Package webhook verifies signed webhook deliveries from the identity provider.
//
// The provider signs each delivery with HMAC-SHA256 over "{id}.{timestamp}.{body}"
// using a shared secret, and sends the result in a versioned signature header.
// Replays are bounded by a timestamp tolerance window.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// HeaderID, HeaderTimestamp and HeaderSignature carry the delivery id,
	// unix timestamp and signature list for each webhook request.
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"

	secretPrefix = "whsec_"

	// DefaultTolerance bounds how stale or future-dated a delivery may be.
	DefaultTolerance = 5 * time.Minute
)

var (
	ErrMissingHeaders   = errors.New("webhook: missing signature headers")
	ErrInvalidTimestamp = errors.New("webhook: invalid timestamp")
	ErrTimestampTooOld  = errors.New("webhook: timestamp outside tolerance")
	ErrNoMatchingSig    = errors.New("webhook: no matching signature")
	ErrMalformedSecret  = errors.New("webhook: malformed signing secret")
)

// Verifier validates webhook signatures against a shared signing secret.
type Verifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewVerifier parses a "whsec_"-prefixed base64 signing secret.
func NewVerifier(secret string) (*Verifier, error) {
	raw := strings.TrimPrefix(secret, secretPrefix)
	if raw == "" {
		return nil, ErrMalformedSecret
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSecret, err)
	}
	return &Verifier{key: key, tolerance: DefaultTolerance, now: time.Now}, nil
}

// Verify checks the delivery signature and timestamp for the given payload.
// The headers map must contain HeaderID, HeaderTimestamp and HeaderSignature.
func (v *Verifier) Verify(payload []byte, headers map[string]string) error {
	id := headers[HeaderID]
	ts := headers[HeaderTimestamp]
	sigs := headers[HeaderSignature]
	if id == "" || ts == "" || sigs == "" {
		return ErrMissingHeaders
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}
	sent := time.Unix(unix, 0)
	if d := v.now().Sub(sent); d > v.tolerance || d < -v.tolerance {
		return ErrTimestampTooOld
	}

	expected := v.sign(id, ts, payload)

	// The header may carry several space-separated signatures (key rotation).
	// Accept if any "v1,"-versioned entry matches.
	for _, entry := range strings.Split(sigs, " ") {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return ErrNoMatchingSig
}

func (v *Verifier) sign(id, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%s.", id, timestamp)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
