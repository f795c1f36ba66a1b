package domain

import "time"

// TokenKind distinguishes the two JWT flavors a device holds.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// TokenClaims is the decoded, validated content of a device JWT.
type TokenClaims struct {
	DeviceID  int64
	Kind      TokenKind
	Nonce     string // jti; makes re-issued tokens distinct even within one clock tick
	IssuedAt  time.Time
	ExpiresAt time.Time
}
