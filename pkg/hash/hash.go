package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrCostOutOfRange = errors.New("bcrypt cost out of range")

// DefaultCost matches the reference deployment (AUTH_BCRYPT_COST).
const DefaultCost = 12

// HashPassword hashes a password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, DefaultCost)
}

// HashPasswordWithCost hashes a password with bcrypt at the given cost.
// Output is salted and non-deterministic; verification is deterministic.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", ErrCostOutOfRange
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// VerifyPassword compares a plain password against a bcrypt hash. A mismatch
// is reported as (false, nil); only malformed hashes produce an error.
func VerifyPassword(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}

// HashToken returns the hex SHA-256 digest of a raw token. Refresh tokens are
// stored only as this digest; the digest is also the session lookup key.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
