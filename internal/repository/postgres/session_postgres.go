package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Sayandeep06/WatchTower/internal/domain"
	"github.com/Sayandeep06/WatchTower/internal/repository"
)

type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, user_id, refresh_token_hash, access_token_jti,
	   device_type, browser, os, ip_address, user_agent,
	   location_country, location_region, location_city, location_timezone,
	   remember_me, expires_at, last_activity_at, created_at,
	   revoked_at, revoked_reason`

// Create inserts a new session into the database
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, refresh_token_hash, access_token_jti,
			device_type, browser, os, ip_address, user_agent,
			location_country, location_region, location_city, location_timezone,
			remember_me, expires_at, last_activity_at, created_at,
			revoked_at, revoked_reason
		) VALUES (
			:id, :user_id, :refresh_token_hash, :access_token_jti,
			:device_type, :browser, :os, :ip_address, :user_agent,
			:location_country, :location_region, :location_city, :location_timezone,
			:remember_me, :expires_at, :last_activity_at, :created_at,
			:revoked_at, :revoked_reason
		)`

	_, err := r.db.NamedExecContext(ctx, query, session)
	if err != nil {
		return fmt.Errorf("%w: failed to create session: %v", domain.ErrUnavailable, err)
	}

	return nil
}

// GetByID retrieves a session by its ID
func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	var session domain.Session
	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get session by id: %v", domain.ErrUnavailable, err)
	}

	return &session, nil
}

// GetByTokenHash retrieves a session by its refresh-token hash. Revoked and
// expired sessions are returned too: the service layer needs the row to tell
// a dead session apart from an unknown token.
func (r *sessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE refresh_token_hash = $1`

	var session domain.Session
	err := r.db.GetContext(ctx, &session, query, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to get session by token: %v", domain.ErrUnavailable, err)
	}

	return &session, nil
}

// Rotate replaces the refresh-token hash and jti in one conditional update
// keyed on the old hash. When two rotations race on the same token, the
// second one matches zero rows and gets ErrNotFound.
func (r *sessionRepository) Rotate(ctx context.Context, oldHash, newHash, newJTI string, expiresAt time.Time) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET refresh_token_hash = $2,
			access_token_jti = $3,
			expires_at = $4,
			last_activity_at = NOW()
		WHERE refresh_token_hash = $1
		  AND revoked_at IS NULL
		  AND expires_at > NOW()
		RETURNING ` + sessionColumns

	var session domain.Session
	err := r.db.GetContext(ctx, &session, query, oldHash, newHash, newJTI, expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to rotate session: %v", domain.ErrUnavailable, err)
	}

	return &session, nil
}

// Revoke marks a session revoked with a reason. Already-revoked sessions are
// left untouched so the original reason and timestamp survive.
func (r *sessionRepository) Revoke(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE sessions
		SET revoked_at = NOW(),
			revoked_reason = $2
		WHERE id = $1 AND revoked_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, id, reason); err != nil {
		return fmt.Errorf("%w: failed to revoke session: %v", domain.ErrUnavailable, err)
	}

	return nil
}

// RevokeAllForUser revokes every unrevoked session of the user
func (r *sessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID, reason string) (int64, error) {
	query := `
		UPDATE sessions
		SET revoked_at = NOW(),
			revoked_reason = $2
		WHERE user_id = $1 AND revoked_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, userID, reason)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to revoke user sessions: %v", domain.ErrUnavailable, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get rows affected: %v", domain.ErrUnavailable, err)
	}

	return rows, nil
}

// ListActiveByUser returns live sessions ordered by most recent activity
func (r *sessionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SessionSummary, error) {
	query := `
		SELECT id, device_type, browser, os, ip_address,
			   location_country, location_region, location_city, location_timezone,
			   last_activity_at, created_at
		FROM sessions
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > NOW()
		ORDER BY last_activity_at DESC`

	var sessions []*domain.SessionSummary
	err := r.db.SelectContext(ctx, &sessions, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list active sessions: %v", domain.ErrUnavailable, err)
	}

	return sessions, nil
}

// DeleteTerminated removes expired or revoked sessions
func (r *sessionRepository) DeleteTerminated(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= NOW() OR revoked_at IS NOT NULL`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to delete terminated sessions: %v", domain.ErrUnavailable, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get rows affected: %v", domain.ErrUnavailable, err)
	}

	return rows, nil
}

// isUniqueViolation reports whether the error is a Postgres unique_violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
