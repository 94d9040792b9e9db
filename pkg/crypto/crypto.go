// Package crypto provides authenticated symmetric encryption for small
// secrets. The blob format is self-describing (salt, nonce and auth tag
// travel with the ciphertext), so the passphrase is the only external input.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// ErrIntegrity is returned when a blob is malformed or its authentication
// tag does not verify. Decrypt never returns partial plaintext.
var ErrIntegrity = errors.New("decryption integrity check failed")

const (
	keyLength  = 32
	saltLength = 64
	nonceSize  = 12

	// scrypt parameters for deriving the AES key from the passphrase.
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

// Encrypt seals plaintext with AES-256-GCM under a key derived from the
// passphrase. The result is base64(salt || nonce || ciphertext+tag).
func Encrypt(plaintext, passphrase string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, saltLength+nonceSize+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a blob produced by Encrypt. Any structural problem or tag
// mismatch yields ErrIntegrity.
func Decrypt(encoded, passphrase string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrIntegrity
	}

	// Minimum: salt + nonce + GCM overhead for an empty plaintext.
	if len(blob) < saltLength+nonceSize+16 {
		return "", ErrIntegrity
	}

	salt := blob[:saltLength]
	nonce := blob[saltLength : saltLength+nonceSize]
	sealed := blob[saltLength+nonceSize:]

	aead, err := newAEAD(passphrase, salt)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrIntegrity
	}

	return string(plaintext), nil
}

func newAEAD(passphrase string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aead, nil
}
