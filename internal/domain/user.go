package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                          uuid.UUID  `json:"id" db:"id"`
	Email                       string     `json:"email" db:"email"`
	FullName                    string     `json:"full_name" db:"full_name"`
	PasswordHash                *string    `json:"-" db:"password_hash"` // nil for passwordless accounts
	FailedLogins                int        `json:"-" db:"failed_logins"`
	LockedUntil                 *time.Time `json:"-" db:"locked_until"`
	PasswordChangedAt           *time.Time `json:"-" db:"password_changed_at"`
	PasswordResetTokenHash      *string    `json:"-" db:"password_reset_token_hash"`
	PasswordResetTokenExpiresAt *time.Time `json:"-" db:"password_reset_token_expires_at"`
	LastLoginAt                 *time.Time `json:"last_login_at" db:"last_login_at"`
	LastLoginIP                 *string    `json:"-" db:"last_login_ip"`
	LastLoginDevice             *string    `json:"-" db:"last_login_device"`
	CreatedAt                   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                   time.Time  `json:"updated_at" db:"updated_at"`
}

// Locked reports whether the account is locked out at the given instant.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
