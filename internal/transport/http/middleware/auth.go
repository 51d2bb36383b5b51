package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/phonefeed-api/internal/infrastructure/jwt"
	"github.com/rs/zerolog/hlog"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// TokenVerifier validates an identity token.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Identify verifies a Bearer token when one is presented and injects its claims
// into the context. Requests without an Authorization header pass through untouched.
func Identify(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("identity token rejected")
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects requests that Identify did not attach claims to.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClaimsFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}

// PhoneFromContext returns the verified phone number of the caller, if any.
func PhoneFromContext(ctx context.Context) (string, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.Subject == "" {
		return "", false
	}
	return c.Subject, true
}
