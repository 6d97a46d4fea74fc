package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

// Reference prefixes for human-readable identifiers
const (
	BookingReferencePrefix = "RR"
	TrackingNumberPrefix   = "PRR"
)

// GenerateSecret generates a cryptographically secure random hex secret
func GenerateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewReference builds a candidate reference: prefix + YYMMDD of now + 4 random digits.
// Example: RR2510180427. Callers must check uniqueness before use.
func NewReference(prefix string, now time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}
	return fmt.Sprintf("%s%s%04d", prefix, now.Format("060102"), n.Int64()), nil
}
