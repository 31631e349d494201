// Package auth validates the shared-secret tokens presented by mirror
// clients. Tokens are compact "subject.expiryUnix.signature" strings signed
// with HMAC-SHA256.
package auth

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

var (
	// ErrInvalidToken indicates a malformed token or failed signature check.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken signals that the token's expiry is in the past.
	ErrExpiredToken = errors.New("token expired")
)

// Verifier checks token signatures against a shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
	leeway time.Duration
}

// NewVerifier constructs a verifier with the given clock-skew allowance.
func NewVerifier(secret string, leeway time.Duration) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth secret must not be empty")
	}
	if leeway < 0 {
		leeway = 0
	}
	return &Verifier{secret: []byte(secret), now: time.Now, leeway: leeway}, nil
}

// Sign mints a token for the subject valid until expiry. Exposed so operators
// and tests can produce credentials with the same secret.
func Sign(secret, subject string, expiry time.Time) string {
	body := fmt.Sprintf("%s.%d", subject, expiry.Unix())
	mac := hmac.New(sha256.New, []byte(strings.TrimSpace(secret)))
	mac.Write([]byte(body))
	return body + "." + hex.EncodeToString(mac.Sum(nil))
}

// Verify validates the signature and expiry and returns the token subject.
func (v *Verifier) Verify(token string) (string, error) {
	if v == nil || len(v.secret) == 0 {
		return "", errors.New("verifier not initialised")
	}
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return "", ErrInvalidToken
	}
	subject, rawExpiry, rawSig := parts[0], parts[1], parts[2]
	if subject == "" {
		return "", ErrInvalidToken
	}
	//1.- Recompute the signature over the body and compare in constant time.
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(subject + "." + rawExpiry))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(rawSig)) {
		return "", ErrInvalidToken
	}
	//2.- Check expiry only after the signature holds, honouring the leeway.
	expiryUnix, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if v.now().Add(-v.leeway).After(time.Unix(expiryUnix, 0)) {
		return "", ErrExpiredToken
	}
	return subject, nil
}
