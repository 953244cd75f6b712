package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateShareToken returns an opaque 256-bit token for bookable links.
// Collisions are negligible; the unique index on share_token is the backstop.
func GenerateShareToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
