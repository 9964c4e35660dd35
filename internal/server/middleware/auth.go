package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stancehq/stance/internal/server/auth"
	"github.com/stancehq/stance/internal/server/handlers"
)

// The auth middleware resolves request identity purely from the access
// token signature and expiry; it never reads storage. Consequence: a
// revoked refresh token has no effect on access tokens issued before the
// revocation, which is why the access TTL stays short.

// RequireAuth rejects requests that do not carry a valid bearer token.
// On success the user ID and admin flag are added to the request context.
func RequireAuth(logger *slog.Logger, codec *auth.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := resolveBearer(logger, codec, r)
			if !ok {
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}
			if claims == nil {
				logger.Warn("missing Authorization header", "path", r.URL.Path)
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), claims)))
		})
	}
}

// OptionalAuth resolves identity when a bearer token is present and passes
// the request through anonymously when it is not. A token that is present
// but invalid is still rejected; a bad credential is never silently
// downgraded to anonymous.
func OptionalAuth(logger *slog.Logger, codec *auth.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := resolveBearer(logger, codec, r)
			if !ok {
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}
			if claims == nil {
				// anonymous
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), claims)))
		})
	}
}

// resolveBearer returns (claims, true) for a valid token, (nil, true) for
// an absent header, and (nil, false) for a header that is present but
// malformed or fails verification. The precise failure is logged here and
// collapsed for the caller.
func resolveBearer(logger *slog.Logger, codec *auth.TokenCodec, r *http.Request) (*auth.Claims, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		logger.Warn("invalid Authorization header format", "path", r.URL.Path)
		return nil, false
	}

	claims, err := codec.Verify(parts[1])
	if err != nil {
		logger.Warn("access token rejected", "path", r.URL.Path, "error", err)
		return nil, false
	}

	logger.Debug("user authenticated", "user_id", claims.Subject, "is_admin", claims.IsAdmin)
	return claims, true
}

func withIdentity(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, handlers.UserIDKey, claims.Subject)
	return context.WithValue(ctx, handlers.IsAdminKey, claims.IsAdmin)
}
