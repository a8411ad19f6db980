package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"careline/pkg/logger"
	"careline/pkg/utils"
)

// Config drives the authentication middleware.
type Config struct {
	// JWTSecret verifies HS256 bearer tokens minted by the platform's
	// identity service.
	JWTSecret string
	// RPS and Burst bound each principal's request rate.
	RPS   float64
	Burst int
}

type ctxPrincipalKey struct{}
type ctxRoleKey struct{}

// Middleware verifies the Authorization bearer token, rate-limits per
// principal, and injects the principal id and role claims into the
// request context. Unauthenticated paths (health, metrics, docs) must be
// mounted outside this middleware.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	limiters := &limiterPool{rps: cfg.RPS, burst: cfg.Burst}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, role, err := verify(cfg.JWTSecret, r.Header.Get("Authorization"))
			if err != nil {
				logger.Warn("auth_rejected", "path", r.URL.Path, "remote", r.RemoteAddr, "error", err)
				utils.JSONError(w, http.StatusUnauthorized, "missing or invalid bearer token")
				return
			}
			if !limiters.Allow(principal) {
				logger.Warn("rate_limited", "principal", principal, "path", r.URL.Path)
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			ctx := context.WithValue(r.Context(), ctxPrincipalKey{}, principal)
			ctx = context.WithValue(ctx, ctxRoleKey{}, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verify(secret, header string) (principal, role string, err error) {
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" || raw == header {
		return "", "", fmt.Errorf("no bearer token")
	}
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", err
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", "", fmt.Errorf("token has no subject")
	}
	if r, ok := claims["role"].(string); ok {
		role = r
	}
	return sub, role, nil
}

// PrincipalFromContext returns the verified principal id or empty string.
func PrincipalFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxPrincipalKey{}).(string); ok {
		return s
	}
	return ""
}

// RoleFromContext returns the verified role claim or empty string.
func RoleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRoleKey{}).(string); ok {
		return s
	}
	return ""
}
