// Package otp generates and validates short-lived one-time codes.
//
// Codes are 6 decimal digits; only the sha256 digest is ever persisted.
// The code space is small and the lifetime short, so the digest is unsalted —
// it exists to keep the plaintext code out of the store, not to resist
// offline cracking.
package otp

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// Challenge is the persistable half of a generated code.
type Challenge struct {
	Hash      string
	ExpiresAt time.Time
}

// Generate produces a fresh 6-digit code together with the hash/expiry pair
// to persist. The plaintext code is returned only for delivery and must not
// be stored.
func Generate(ttl time.Duration) (code string, ch Challenge, err error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", Challenge{}, fmt.Errorf("generate otp: %w", err)
	}
	code = fmt.Sprintf("%06d", n.Int64())
	ch = Challenge{
		Hash:      Hash(code),
		ExpiresAt: time.Now().Add(ttl),
	}
	return code, ch, nil
}

// Hash returns the hex-encoded sha256 digest of a code. Used at generation
// and again at verification so stored and supplied codes compare in the
// same form.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Valid reports whether the supplied code matches storedHash and the
// challenge has not lapsed. Wrong code and expired code are deliberately
// indistinguishable to the caller. The hash comparison is constant time.
func Valid(storedHash string, expiresAt time.Time, code string, now time.Time) bool {
	match := subtle.ConstantTimeCompare([]byte(Hash(code)), []byte(storedHash)) == 1
	return match && now.Before(expiresAt)
}
