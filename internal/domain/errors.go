package domain

import "errors"

// Error taxonomy surfaced by the auth and token services. Handlers map these
// onto HTTP statuses; services never return raw persistence errors for
// credential or session failures.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountLocked      = errors.New("account is locked")
	ErrTokenExpired       = errors.New("access token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrSessionRevoked     = errors.New("session has been revoked")
	ErrSessionExpired     = errors.New("session has expired")
	ErrNotFound           = errors.New("not found")

	// ErrUnavailable wraps persistence or connectivity failures. It is never
	// folded into a credential error: callers must be able to tell an outage
	// from a rejection.
	ErrUnavailable = errors.New("service unavailable")
)
