package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewSessionID returns an opaque session identifier: 32 bytes of
// cryptographically secure random data hex-encoded to 64 characters. The
// value carries no structure; everything about the session lives server-side.
func NewSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
