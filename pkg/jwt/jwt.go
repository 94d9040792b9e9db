package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Sayandeep06/WatchTower/internal/domain"
)

var (
	ErrInvalidSigningMethod = errors.New("unexpected signing method")
	ErrMissingSecret        = errors.New("signing secret is required")
)

// Manager signs and verifies short-lived access tokens with HS256. Refresh
// tokens are opaque random values and never pass through here.
type Manager struct {
	secret       []byte
	accessExpiry time.Duration
	issuer       string
}

func NewManager(secret string, accessExpiry time.Duration, issuer string) (*Manager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	return &Manager{
		secret:       []byte(secret),
		accessExpiry: accessExpiry,
		issuer:       issuer,
	}, nil
}

// SignAccessToken mints a token carrying {iss, sub=userID, sessionId, email,
// deviceType, jti} with the configured lifetime.
func (m *Manager) SignAccessToken(userID, sessionID uuid.UUID, email string, deviceType domain.DeviceType, jti string) (string, error) {
	now := time.Now()

	claims := domain.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
		SessionID:  sessionID,
		Email:      email,
		DeviceType: deviceType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// VerifyAccessToken checks signature and expiry and returns the claims.
// Session liveness is not checked here; callers cross-check the jti against
// the session's stored value to detect rotated or revoked tokens.
func (m *Manager) VerifyAccessToken(tokenString string) (*domain.AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &domain.AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*domain.AccessClaims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}

	return claims, nil
}

// AccessExpiry exposes the configured access-token lifetime for cookie and
// response metadata.
func (m *Manager) AccessExpiry() time.Duration {
	return m.accessExpiry
}
