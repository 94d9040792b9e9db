package token

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/google/uuid"
)

func TestGenerate(t *testing.T) {
	tok, err := Generate(32)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not URL-safe base64: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 bytes of entropy, got %d", len(raw))
	}

	other, err := Generate(32)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if tok == other {
		t.Fatal("two generated tokens must differ")
	}
}

func TestGenerateHex(t *testing.T) {
	tok, err := GenerateHex(32)
	if err != nil {
		t.Fatalf("GenerateHex: %v", err)
	}

	raw, err := hex.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not hex: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 bytes of entropy, got %d", len(raw))
	}
}

func TestNewID(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewID output is not a uuid: %v", err)
	}
	if id == NewID() {
		t.Fatal("two ids must differ")
	}
}
