package impl

import (
	"errors"
	"strconv"
	"time"

	"voicebot/internal/domain"
	"voicebot/internal/observability/metrics"
	"voicebot/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ====== Config ======

type TokenConfig struct {
	Issuer     string        // e.g. "voicebot"
	Audience   string        // e.g. "voicebot-devices"
	AccessTTL  time.Duration // e.g. 1h
	RefreshTTL time.Duration // e.g. 24h
	SigningKey []byte        // HS256 secret
}

// ====== Claims ======

type DeviceClaims struct {
	Kind                 string `json:"kind"` // "access" | "refresh"
	jwt.RegisteredClaims        // sub == device id, jti == per-issue nonce
}

// ====== Service ======

type TokenServiceImpl struct {
	cfg TokenConfig
	now func() time.Time
}

var _ service.TokenService = (*TokenServiceImpl)(nil)

func NewTokenServiceHS256(cfg TokenConfig) *TokenServiceImpl {
	return &TokenServiceImpl{cfg: cfg, now: time.Now}
}

// Issue signs a fresh token of the given kind for the device. The jti nonce
// guarantees two issues within the same second still produce distinct strings,
// which the stored-token equality check depends on.
func (t *TokenServiceImpl) Issue(deviceID int64, kind domain.TokenKind) (string, time.Time, error) {
	result := "success"
	defer func() {
		metrics.TokensIssuedTotal.WithLabelValues(string(kind), result).Inc()
	}()
	now := t.now().UTC()

	ttl := t.cfg.AccessTTL
	if kind == domain.TokenRefresh {
		ttl = t.cfg.RefreshTTL
	}
	exp := now.Add(ttl)

	claims := DeviceClaims{
		Kind: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   strconv.FormatInt(deviceID, 10),
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
	if err != nil {
		result = "failure"
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Decode verifies signature, method, expiry, issuer and audience, and returns
// the structured claims. Expired-but-otherwise-valid tokens map to
// domain.ErrTokenExpired; everything else maps to domain.ErrInvalidToken.
func (t *TokenServiceImpl) Decode(tokenStr string) (*domain.TokenClaims, error) {
	claims := &DeviceClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !tok.Valid {
		return nil, domain.ErrInvalidToken
	}

	// Issuer/audience enforced here rather than via parser options.
	if claims.Issuer != t.cfg.Issuer {
		return nil, domain.ErrInvalidToken
	}
	if !containsAudience(claims.Audience, t.cfg.Audience) {
		return nil, domain.ErrInvalidToken
	}

	kind := domain.TokenKind(claims.Kind)
	if kind != domain.TokenAccess && kind != domain.TokenRefresh {
		return nil, domain.ErrInvalidToken
	}
	deviceID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	out := &domain.TokenClaims{
		DeviceID: deviceID,
		Kind:     kind,
		Nonce:    claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// containsAudience checks if the expected audience is present in the claim audience list.
func containsAudience(aud jwt.ClaimStrings, expected string) bool {
	for _, a := range aud {
		if a == expected {
			return true
		}
	}
	return false
}
