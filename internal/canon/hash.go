package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DigestLen is the length of every digest string (hex SHA-256).
const DigestLen = 64

// Digest returns the lowercase hex SHA-256 of b.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Fingerprint computes Digest(Marshal(v)).
// The same logical value always yields the same fingerprint regardless of
// the order its object keys were inserted in.
func Fingerprint(v Value) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return Digest(b), nil
}

// FingerprintOf fingerprints any JSON-encodable Go value.
func FingerprintOf(v any) (string, error) {
	b, err := Canonicalize(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return Digest(b), nil
}

// MustFingerprint is like FingerprintOf but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(v any) string {
	h, err := FingerprintOf(v)
	if err != nil {
		panic(err)
	}
	return h
}
