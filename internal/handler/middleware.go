package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/boddenberg/pf-dashboard-bfa-go/internal/service"
	"go.uber.org/zap"
)

type contextKey string

const customerIDKey contextKey = "customerID"

// SessionExpiresHeader carries the seconds left on a session once it drops
// below the warn threshold, so the frontend can start its countdown.
const SessionExpiresHeader = "X-Session-Expires-In"

// JWTAuthMiddleware validates Bearer tokens and injects customerID into
// context. Tokens close to expiry get the countdown header on the response.
func JWTAuthMiddleware(verifier *service.TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			tokenString := parts[1]
			claims, err := verifier.ValidateAccessToken(tokenString)
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			if remaining, warn := verifier.ExpiryWarning(claims); warn {
				w.Header().Set(SessionExpiresHeader, strconv.Itoa(int(remaining.Seconds())))
			}

			// Inject customerID into context
			ctx := context.WithValue(r.Context(), customerIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CustomerIDFromContext extracts the authenticated customer ID from context.
func CustomerIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(customerIDKey).(string)
	return v
}

// authorizeCustomer rejects requests whose token subject does not match the
// customer in the path. Requests without auth context (auth disabled) pass.
func authorizeCustomer(w http.ResponseWriter, r *http.Request, customerID string) bool {
	tokenCustomer := CustomerIDFromContext(r.Context())
	if tokenCustomer != "" && tokenCustomer != customerID {
		writeError(w, http.StatusForbidden, "token does not grant access to this customer")
		return false
	}
	return true
}
