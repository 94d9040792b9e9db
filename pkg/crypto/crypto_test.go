package crypto

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	blob, err := Encrypt("the quick brown fox", "passphrase-1")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	plaintext, err := Decrypt(blob, "passphrase-1")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plaintext != "the quick brown fox" {
		t.Fatalf("round trip mismatch: %q", plaintext)
	}
}

func TestEncryptFreshSaltAndNonce(t *testing.T) {
	a, err := Encrypt("same plaintext", "pw")
	if err != nil {
		t.Fatalf("first Encrypt: %v", err)
	}
	b, err := Encrypt("same plaintext", "pw")
	if err != nil {
		t.Fatalf("second Encrypt: %v", err)
	}
	if a == b {
		t.Fatal("two encryptions of the same plaintext must differ")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	blob, err := Encrypt("secret", "right")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if _, err := Decrypt(blob, "wrong"); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
}

func TestDecryptTamperedBlob(t *testing.T) {
	blob, err := Encrypt("secret", "pw")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Flip one bit in the ciphertext region.
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := Decrypt(tampered, "pw"); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
}

func TestDecryptMalformedInput(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"too short", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decrypt(tc.input, "pw"); !errors.Is(err, ErrIntegrity) {
				t.Fatalf("expected ErrIntegrity, got %v", err)
			}
		})
	}
}

func TestEncryptEmptyPlaintext(t *testing.T) {
	blob, err := Encrypt("", "pw")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	plaintext, err := Decrypt(blob, "pw")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plaintext != "" {
		t.Fatalf("expected empty plaintext, got %q", plaintext)
	}
}
