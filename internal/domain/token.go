package domain

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AccessClaims is the payload of a signed access token. The jti
// (RegisteredClaims.ID) is the sole link between a live access token and its
// session row: rotating the session's stored jti invalidates every
// previously issued access token without a deny-list.
type AccessClaims struct {
	jwt.RegisteredClaims
	SessionID  uuid.UUID  `json:"sessionId"`
	Email      string     `json:"email"`
	DeviceType DeviceType `json:"deviceType"`
}
