package blobrepo

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Signer mints and verifies expiring read capabilities for blob keys. The
// signature is a keyed BLAKE2b MAC over the key and expiry, so possession of
// a URL grants access to exactly one blob until the expiry passes.
type Signer struct {
	secret []byte
}

// NewSigner creates a signer from a non-empty secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("presign secret is required")
	}
	// blake2b keys are capped at 64 bytes.
	raw := []byte(secret)
	if len(raw) > 64 {
		sum := blake2b.Sum256(raw)
		raw = sum[:]
	}
	return &Signer{secret: raw}, nil
}

// Sign returns the hex MAC for key expiring at exp.
func (s *Signer) Sign(key string, exp time.Time) (string, error) {
	mac, err := blake2b.New256(s.secret)
	if err != nil {
		return "", err
	}
	mac.Write([]byte(key))
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatInt(exp.Unix(), 10)))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify checks a presented signature against key and expiry. Expired grants
// fail regardless of signature validity.
func (s *Signer) Verify(key string, exp time.Time, sig string, now time.Time) error {
	if now.After(exp) {
		return fmt.Errorf("capability expired")
	}
	expected, err := s.Sign(key, exp)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return fmt.Errorf("invalid signature")
	}
	return nil
}
