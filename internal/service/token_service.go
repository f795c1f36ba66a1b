package service

import (
	"time"

	"voicebot/internal/domain"
)

// TokenService signs and decodes device JWTs. Decode only checks what the
// token itself can prove (signature, expiry, shape); whether the token is the
// device's current one is the session layer's job.
type TokenService interface {
	Issue(deviceID int64, kind domain.TokenKind) (token string, expiresAt time.Time, err error)
	Decode(token string) (*domain.TokenClaims, error)
}
