package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewToken returns a random opaque token (64 hex chars = 32 bytes of
// randomness). Used for both session tokens and CSRF tokens.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
