package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bookreview/internal/platform/crypto"
)

// BlacklistChecker reports whether an access token id has been revoked.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func AuthMiddleware(secret string, blacklist BlacklistChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				JSONError(w, r, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized", nil)
				return
			}

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token", nil)
				return
			}

			if blacklist != nil {
				revoked, err := blacklist.IsBlacklisted(r.Context(), claims.ID)
				if err != nil || revoked {
					JSONError(w, r, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized", nil)
					return
				}
			}

			var expiresAt time.Time
			if claims.ExpiresAt != nil {
				expiresAt = claims.ExpiresAt.Time
			}

			fillUserSlot(r.Context(), claims.Sub)
			ctx := ContextWithUser(r.Context(), claims.Sub, claims.Role)
			ctx = ContextWithToken(ctx, claims.ID, expiresAt)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
