package domain

import (
	"time"

	"github.com/google/uuid"
)

type DeviceType string

const (
	DeviceMobile  DeviceType = "MOBILE"
	DeviceDesktop DeviceType = "DESKTOP"
	DeviceTablet  DeviceType = "TABLET"
	DeviceTV      DeviceType = "TV"
	DeviceOther   DeviceType = "OTHER"
)

// ValidDeviceType normalizes an arbitrary device string to one of the
// known device types, falling back to OTHER.
func ValidDeviceType(s string) DeviceType {
	switch DeviceType(s) {
	case DeviceMobile, DeviceDesktop, DeviceTablet, DeviceTV:
		return DeviceType(s)
	default:
		return DeviceOther
	}
}

// Session binds one authenticated device to a user. Exactly one refresh-token
// hash and one access-token jti are valid per session at any instant; both
// are replaced together on rotation.
type Session struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	RefreshTokenHash string     `json:"-" db:"refresh_token_hash"`
	AccessTokenJTI   string     `json:"-" db:"access_token_jti"`
	DeviceType       DeviceType `json:"device_type" db:"device_type"`
	Browser          *string    `json:"browser,omitempty" db:"browser"`
	OS               string     `json:"os" db:"os"`
	IPAddress        string     `json:"ip_address" db:"ip_address"`
	UserAgent        string     `json:"-" db:"user_agent"`
	LocationCountry  *string    `json:"location_country,omitempty" db:"location_country"`
	LocationRegion   *string    `json:"location_region,omitempty" db:"location_region"`
	LocationCity     *string    `json:"location_city,omitempty" db:"location_city"`
	LocationTimezone *string    `json:"location_timezone,omitempty" db:"location_timezone"`
	RememberMe       bool       `json:"remember_me" db:"remember_me"`
	ExpiresAt        time.Time  `json:"expires_at" db:"expires_at"`
	LastActivityAt   time.Time  `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
	RevokedReason    *string    `json:"revoked_reason,omitempty" db:"revoked_reason"`
}

// Active reports whether the session can still mint tokens: not revoked and
// not past its absolute expiry.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// SessionSummary is the device/location projection returned to users listing
// their active sessions. Token material never leaves the store.
type SessionSummary struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	DeviceType       DeviceType `json:"device_type" db:"device_type"`
	Browser          *string    `json:"browser,omitempty" db:"browser"`
	OS               string     `json:"os" db:"os"`
	IPAddress        string     `json:"ip_address" db:"ip_address"`
	LocationCountry  *string    `json:"location_country,omitempty" db:"location_country"`
	LocationRegion   *string    `json:"location_region,omitempty" db:"location_region"`
	LocationCity     *string    `json:"location_city,omitempty" db:"location_city"`
	LocationTimezone *string    `json:"location_timezone,omitempty" db:"location_timezone"`
	LastActivityAt   time.Time  `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// Revocation reason codes recorded on sessions for audit.
const (
	RevokeReasonUserLogout     = "USER_LOGOUT"
	RevokeReasonPasswordChange = "PASSWORD_CHANGE"
	RevokeReasonPasswordReset  = "PASSWORD_RESET"
	RevokeReasonAdminAction    = "ADMIN_ACTION"
)

// DeviceContext carries the request-derived device metadata attached to a
// session at creation. Parsing request headers into this struct is the
// routing layer's job.
type DeviceContext struct {
	DeviceType DeviceType
	Browser    string
	OS         string
	IPAddress  string
	UserAgent  string
	Location   *Location
}

type Location struct {
	Country  string `json:"country,omitempty"`
	Region   string `json:"region,omitempty"`
	City     string `json:"city,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}
