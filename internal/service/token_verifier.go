package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
)

// JWTClaims represents the custom claims in access tokens issued by the
// auth service.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// TokenVerifier validates access tokens minted elsewhere. The dashboard
// never issues or refreshes tokens; it only consumes them and tells the
// frontend when a session is about to run out.
type TokenVerifier struct {
	secret        []byte
	warnThreshold time.Duration
}

// NewTokenVerifier creates a verifier for HS256 access tokens. Sessions
// with less than warnThreshold left trigger the expiry-countdown header.
func NewTokenVerifier(secret string, warnThreshold time.Duration) *TokenVerifier {
	return &TokenVerifier{
		secret:        []byte(secret),
		warnThreshold: warnThreshold,
	}
}

// ValidateAccessToken parses and verifies a bearer token.
func (v *TokenVerifier) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return claims, nil
}

// ExpiryWarning reports how long the session has left when that drops
// below the warn threshold, so the frontend countdown can start.
func (v *TokenVerifier) ExpiryWarning(claims *JWTClaims) (time.Duration, bool) {
	if claims.ExpiresAt == nil {
		return 0, false
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining > 0 && remaining <= v.warnThreshold {
		return remaining, true
	}
	return 0, false
}
