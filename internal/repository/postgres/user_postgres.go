package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Sayandeep06/WatchTower/internal/domain"
	"github.com/Sayandeep06/WatchTower/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, full_name, password_hash,
	   failed_logins, locked_until, password_changed_at,
	   password_reset_token_hash, password_reset_token_expires_at,
	   last_login_at, last_login_ip, last_login_device,
	   created_at, updated_at`

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, email, full_name, password_hash,
			failed_logins, locked_until, password_changed_at,
			password_reset_token_hash, password_reset_token_expires_at,
			last_login_at, last_login_ip, last_login_device,
			created_at, updated_at
		) VALUES (
			:id, :email, :full_name, :password_hash,
			:failed_logins, :locked_until, :password_changed_at,
			:password_reset_token_hash, :password_reset_token_expires_at,
			:last_login_at, :last_login_ip, :last_login_device,
			:created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("%w: failed to create user: %v", domain.ErrUnavailable, err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user domain.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get user by id: %v", domain.ErrUnavailable, err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user domain.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get user by email: %v", domain.ErrUnavailable, err)
	}

	return &user, nil
}

// UpdatePassword replaces the password hash and stamps password_changed_at
func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2,
			password_changed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("%w: failed to update password: %v", domain.ErrUnavailable, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", domain.ErrUnavailable, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// IncrementFailedLogins bumps the counter atomically and returns the new value
func (r *userRepository) IncrementFailedLogins(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE users
		SET failed_logins = failed_logins + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING failed_logins`

	var count int
	err := r.db.GetContext(ctx, &count, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("%w: failed to increment failed logins: %v", domain.ErrUnavailable, err)
	}

	return count, nil
}

// ResetFailedLogins clears the failed-attempt counter and any lockout
func (r *userRepository) ResetFailedLogins(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET failed_logins = 0,
			locked_until = NULL,
			updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%w: failed to reset failed logins: %v", domain.ErrUnavailable, err)
	}

	return nil
}

// SetLockout locks the account until the given time
func (r *userRepository) SetLockout(ctx context.Context, id uuid.UUID, until time.Time) error {
	query := `
		UPDATE users
		SET locked_until = $2,
			updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, until); err != nil {
		return fmt.Errorf("%w: failed to set lockout: %v", domain.ErrUnavailable, err)
	}

	return nil
}

// RecordLogin stores last-login metadata after a successful authentication
func (r *userRepository) RecordLogin(ctx context.Context, id uuid.UUID, ip string, device domain.DeviceType) error {
	query := `
		UPDATE users
		SET last_login_at = NOW(),
			last_login_ip = $2,
			last_login_device = $3,
			updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, ip, string(device)); err != nil {
		return fmt.Errorf("%w: failed to record login: %v", domain.ErrUnavailable, err)
	}

	return nil
}

// SetPasswordResetToken stores the hash of a password-reset token
func (r *userRepository) SetPasswordResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET password_reset_token_hash = $2,
			password_reset_token_expires_at = $3,
			updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("%w: failed to set password reset token: %v", domain.ErrUnavailable, err)
	}

	return nil
}

// GetByPasswordResetToken retrieves a user by an unexpired reset-token hash
func (r *userRepository) GetByPasswordResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE password_reset_token_hash = $1
		  AND password_reset_token_expires_at > NOW()`

	var user domain.User
	err := r.db.GetContext(ctx, &user, query, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get user by reset token: %v", domain.ErrUnavailable, err)
	}

	return &user, nil
}

// ClearPasswordResetToken removes any outstanding reset token
func (r *userRepository) ClearPasswordResetToken(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET password_reset_token_hash = NULL,
			password_reset_token_expires_at = NULL,
			updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%w: failed to clear password reset token: %v", domain.ErrUnavailable, err)
	}

	return nil
}
