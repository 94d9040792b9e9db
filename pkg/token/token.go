// Package token generates opaque credentials and identifiers from the
// system entropy source. Generation never degrades to a weaker source: if
// crypto/rand fails, the call fails.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// Generate returns a URL-safe token built from byteLength random bytes.
// Used for refresh tokens (32 bytes in the reference configuration).
func Generate(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// GenerateHex returns a hex token built from byteLength random bytes. Used
// for password-reset tokens.
func GenerateHex(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// NewID returns a fresh random identifier, used for session ids and
// access-token jti values.
func NewID() string {
	return uuid.NewString()
}
