package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/pf-dashboard-bfa-go/internal/service"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret, tokenType string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := service.JWTClaims{
		Sub:  "cust-1",
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "auth-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestValidateAccessToken(t *testing.T) {
	v := service.NewTokenVerifier(testSecret, 5*time.Minute)

	claims, err := v.ValidateAccessToken(signTestToken(t, testSecret, "access", time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Sub != "cust-1" {
		t.Errorf("expected sub cust-1, got %q", claims.Sub)
	}
}

func TestValidateAccessToken_Rejections(t *testing.T) {
	v := service.NewTokenVerifier(testSecret, 5*time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong secret", signTestToken(t, "other-secret", "access", time.Hour)},
		{"expired", signTestToken(t, testSecret, "access", -time.Minute)},
		{"wrong type", signTestToken(t, testSecret, "refresh", time.Hour)},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateAccessToken(tt.token)
			var unauthorized *domain.ErrUnauthorized
			if !errors.As(err, &unauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestExpiryWarning(t *testing.T) {
	v := service.NewTokenVerifier(testSecret, 5*time.Minute)

	longLived, err := v.ValidateAccessToken(signTestToken(t, testSecret, "access", time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, warn := v.ExpiryWarning(longLived); warn {
		t.Error("an hour-long session must not warn at a 5m threshold")
	}

	expiring, err := v.ValidateAccessToken(signTestToken(t, testSecret, "access", 2*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	remaining, warn := v.ExpiryWarning(expiring)
	if !warn {
		t.Fatal("a 2m session must warn at a 5m threshold")
	}
	if remaining <= 0 || remaining > 2*time.Minute {
		t.Errorf("remaining = %v, want within (0, 2m]", remaining)
	}
}
