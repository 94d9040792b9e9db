package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Sayandeep06/WatchTower/internal/domain"
)

func newTestManager(t *testing.T, expiry time.Duration) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", expiry, "watchtower")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("", time.Minute, "watchtower"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestSignAndVerifyAccessToken(t *testing.T) {
	m := newTestManager(t, 15*time.Minute)

	userID := uuid.New()
	sessionID := uuid.New()

	signed, err := m.SignAccessToken(userID, sessionID, "alice@example.com", domain.DeviceDesktop, "jti-1")
	if err != nil {
		t.Fatalf("SignAccessToken: %v", err)
	}

	claims, err := m.VerifyAccessToken(signed)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}

	if claims.Subject != userID.String() {
		t.Errorf("subject = %q, want %q", claims.Subject, userID.String())
	}
	if claims.SessionID != sessionID {
		t.Errorf("sessionId = %v, want %v", claims.SessionID, sessionID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.DeviceType != domain.DeviceDesktop {
		t.Errorf("deviceType = %q", claims.DeviceType)
	}
	if claims.ID != "jti-1" {
		t.Errorf("jti = %q", claims.ID)
	}
	if claims.Issuer != "watchtower" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := newTestManager(t, -time.Minute)

	signed, err := m.SignAccessToken(uuid.New(), uuid.New(), "a@b.c", domain.DeviceMobile, "jti")
	if err != nil {
		t.Fatalf("SignAccessToken: %v", err)
	}

	if _, err := m.VerifyAccessToken(signed); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := newTestManager(t, time.Minute)

	signed, err := m.SignAccessToken(uuid.New(), uuid.New(), "a@b.c", domain.DeviceMobile, "jti")
	if err != nil {
		t.Fatalf("SignAccessToken: %v", err)
	}

	other, err := NewManager("different-secret", time.Minute, "watchtower")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if _, err := other.VerifyAccessToken(signed); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	foreign, err := NewManager("test-secret", time.Minute, "someone-else")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	signed, err := foreign.SignAccessToken(uuid.New(), uuid.New(), "a@b.c", domain.DeviceOther, "jti")
	if err != nil {
		t.Fatalf("SignAccessToken: %v", err)
	}

	m := newTestManager(t, time.Minute)
	if _, err := m.VerifyAccessToken(signed); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := newTestManager(t, time.Minute)
	if _, err := m.VerifyAccessToken("not.a.token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
