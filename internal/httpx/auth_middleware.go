package httpx

import (
	"context"
	"net/http"
	"strings"

	"bookreview/internal/platform/crypto"
)

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware requires a valid, unrevoked bearer token and puts its claims on
// the context. revoked may be nil.
func AuthMiddleware(secret string, revoked RevocationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, r, http.StatusUnauthorized, "AUTH_ERROR", "Not authorized, no token", nil)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			if revoked != nil && claims.ID != "" {
				gone, err := revoked.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					WriteError(w, r, err)
					return
				}
				if gone {
					WriteError(w, r, crypto.ErrTokenRevoked)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims)))
		})
	}
}

// Protect wraps a single handler func with AuthMiddleware.
func Protect(secret string, revoked RevocationChecker, h http.HandlerFunc) http.Handler {
	return AuthMiddleware(secret, revoked)(h)
}
