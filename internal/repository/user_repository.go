package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Sayandeep06/WatchTower/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword replaces the password hash and stamps
	// password_changed_at.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// IncrementFailedLogins bumps the failed-attempt counter in a single
	// statement and returns the new value. Concurrent increments must not
	// lose updates.
	IncrementFailedLogins(ctx context.Context, id uuid.UUID) (int, error)
	ResetFailedLogins(ctx context.Context, id uuid.UUID) error
	SetLockout(ctx context.Context, id uuid.UUID, until time.Time) error

	// RecordLogin stores last-login timestamp, IP and device type.
	RecordLogin(ctx context.Context, id uuid.UUID, ip string, device domain.DeviceType) error

	SetPasswordResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetByPasswordResetToken(ctx context.Context, tokenHash string) (*domain.User, error)
	ClearPasswordResetToken(ctx context.Context, id uuid.UUID) error
}
