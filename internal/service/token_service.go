package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Sayandeep06/WatchTower/internal/config"
	"github.com/Sayandeep06/WatchTower/internal/domain"
	"github.com/Sayandeep06/WatchTower/internal/repository"
	"github.com/Sayandeep06/WatchTower/pkg/hash"
	"github.com/Sayandeep06/WatchTower/pkg/jwt"
	"github.com/Sayandeep06/WatchTower/pkg/token"
)

// Refresh tokens carry this many random bytes; only their SHA-256 digest is
// ever persisted.
const refreshTokenBytes = 32

// TokenService owns session rows and the token pairs bound to them. A
// session is active iff revoked_at is unset and expires_at is in the future;
// rotation replaces the refresh-token hash and the access-token jti together
// so one rotation invalidates every previously issued token for the session.
type TokenService struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	jwtManager  *jwt.Manager
	cfg         *config.Config
}

func NewTokenService(sessionRepo repository.SessionRepository, userRepo repository.UserRepository, jwtManager *jwt.Manager, cfg *config.Config) *TokenService {
	return &TokenService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		jwtManager:  jwtManager,
		cfg:         cfg,
	}
}

type CreateSessionInput struct {
	UserID     uuid.UUID
	Email      string
	Device     domain.DeviceContext
	RememberMe bool
}

type SessionTokens struct {
	SessionID uuid.UUID
	Tokens    domain.TokenPair
}

// CreateSession persists a new session for the device and returns the only
// copy of the raw refresh token that will ever exist.
func (s *TokenService) CreateSession(ctx context.Context, input CreateSessionInput) (*SessionTokens, error) {
	refreshToken, err := token.Generate(refreshTokenBytes)
	if err != nil {
		return nil, err
	}
	jti := token.NewID()

	now := time.Now()
	session := &domain.Session{
		ID:               uuid.New(),
		UserID:           input.UserID,
		RefreshTokenHash: hash.HashToken(refreshToken),
		AccessTokenJTI:   jti,
		DeviceType:       input.Device.DeviceType,
		OS:               input.Device.OS,
		IPAddress:        input.Device.IPAddress,
		UserAgent:        input.Device.UserAgent,
		RememberMe:       input.RememberMe,
		ExpiresAt:        now.Add(s.sessionLifetime(input.RememberMe)),
		LastActivityAt:   now,
		CreatedAt:        now,
	}
	if input.Device.Browser != "" {
		session.Browser = &input.Device.Browser
	}
	if loc := input.Device.Location; loc != nil {
		if loc.Country != "" {
			session.LocationCountry = &loc.Country
		}
		if loc.Region != "" {
			session.LocationRegion = &loc.Region
		}
		if loc.City != "" {
			session.LocationCity = &loc.City
		}
		if loc.Timezone != "" {
			session.LocationTimezone = &loc.Timezone
		}
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.SignAccessToken(input.UserID, session.ID, input.Email, session.DeviceType, jti)
	if err != nil {
		return nil, err
	}

	return &SessionTokens{
		SessionID: session.ID,
		Tokens: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
		},
	}, nil
}

// VerifyAccessToken checks signature and expiry only. Combine with
// ValidateSession to reject tokens issued before the session's last
// rotation.
func (s *TokenService) VerifyAccessToken(tokenString string) (*domain.AccessClaims, error) {
	return s.jwtManager.VerifyAccessToken(tokenString)
}

// ValidateSession confirms the session is active and that the presented jti
// is the session's current one. A stale jti means the access token predates
// a rotation and must be rejected even though its signature verifies.
func (s *TokenService) ValidateSession(ctx context.Context, sessionID uuid.UUID, jti string) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if !time.Now().Before(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}
	if session.AccessTokenJTI != jti {
		return nil, domain.ErrTokenInvalid
	}

	return session, nil
}

// RotateRefreshToken exchanges a raw refresh token for a new pair. The old
// hash becomes invalid the moment the rotation lands, so replaying an
// already-rotated token fails with ErrTokenInvalid, the replay signal for
// token theft.
func (s *TokenService) RotateRefreshToken(ctx context.Context, rawRefreshToken string) (*SessionTokens, error) {
	oldHash := hash.HashToken(rawRefreshToken)

	current, err := s.sessionRepo.GetByTokenHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	now := time.Now()
	if current.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if !now.Before(current.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	user, err := s.userRepo.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	newRefreshToken, err := token.Generate(refreshTokenBytes)
	if err != nil {
		return nil, err
	}
	newJTI := token.NewID()

	// Remember-me is sticky: the extension window follows the session's
	// original policy, not the request.
	expiresAt := now.Add(s.sessionLifetime(current.RememberMe))

	rotated, err := s.sessionRepo.Rotate(ctx, oldHash, hash.HashToken(newRefreshToken), newJTI, expiresAt)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// A concurrent rotation won the conditional update first.
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	accessToken, err := s.jwtManager.SignAccessToken(rotated.UserID, rotated.ID, user.Email, rotated.DeviceType, newJTI)
	if err != nil {
		return nil, err
	}

	return &SessionTokens{
		SessionID: rotated.ID,
		Tokens: domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: newRefreshToken,
			TokenType:    "Bearer",
		},
	}, nil
}

// SessionByID fetches a session row regardless of state.
func (s *TokenService) SessionByID(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	return s.sessionRepo.GetByID(ctx, sessionID)
}

// RevokeSession marks the session revoked with an audit reason. Idempotent.
func (s *TokenService) RevokeSession(ctx context.Context, sessionID uuid.UUID, reason string) error {
	return s.sessionRepo.Revoke(ctx, sessionID, reason)
}

// RevokeAllUserSessions revokes every live session of the user and returns
// the count affected. Used on password change and account security events.
func (s *TokenService) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	return s.sessionRepo.RevokeAllForUser(ctx, userID, reason)
}

// ListActiveSessions returns the user's live sessions, most recent activity
// first, without token material.
func (s *TokenService) ListActiveSessions(ctx context.Context, userID uuid.UUID) ([]*domain.SessionSummary, error) {
	return s.sessionRepo.ListActiveByUser(ctx, userID)
}

// PurgeExpired deletes expired and revoked sessions. Idempotent, safe on any
// cadence.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteTerminated(ctx)
}

func (s *TokenService) sessionLifetime(rememberMe bool) time.Duration {
	if rememberMe {
		return s.cfg.Session.RememberMeLifetime
	}
	return s.cfg.Session.DefaultLifetime
}
