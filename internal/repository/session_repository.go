package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Sayandeep06/WatchTower/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// GetByTokenHash finds a session by its refresh-token hash regardless of
	// revocation or expiry state, so the caller can distinguish an unknown
	// token from a dead session.
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)

	// Rotate atomically replaces the refresh-token hash and jti, extends the
	// expiry and advances last activity, as a single conditional update
	// keyed on the old hash over a live session. Returns ErrNotFound when no
	// live session carries oldHash, which makes concurrent rotations of the
	// same token resolve to exactly one winner.
	Rotate(ctx context.Context, oldHash, newHash, newJTI string, expiresAt time.Time) (*domain.Session, error)

	// Revoke sets revoked_at and the reason. Revoking an already-revoked
	// session is a no-op success.
	Revoke(ctx context.Context, id uuid.UUID, reason string) error

	// RevokeAllForUser revokes every unrevoked session of the user and
	// returns the number affected.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error)

	// ListActiveByUser returns non-revoked, unexpired sessions ordered by
	// most recent activity, projected without token material.
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SessionSummary, error)

	// DeleteTerminated removes expired or revoked sessions and returns the
	// number deleted. Safe to run repeatedly and concurrently.
	DeleteTerminated(ctx context.Context) (int64, error)
}
