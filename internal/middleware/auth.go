package middleware

import (
	"errors"
	"net/http"

	"zidoyvelg-be/internal/auth"
	"zidoyvelg-be/internal/logger"
	"zidoyvelg-be/internal/utils"

	"go.uber.org/zap"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticate resolves the caller from the access token. Requests without a
// token pass through anonymously; a token that fails validation is rejected.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := auth.ExtractAccessToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejected access token", zap.Error(err))
				utils.WriteJSONError(w, auth.ErrInvalidToken.Error(), "Unauthenticated", http.StatusUnauthorized)
				return
			}

			ctx := auth.WithIdentity(r.Context(), claims.Identity())
			ctx = logger.WithUserID(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.FromContext(r.Context()); err != nil {
			utils.WriteJSONError(w, err.Error(), "Unauthenticated", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects anonymous callers with 401 and other roles with 403.
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := auth.FromContext(r.Context())
			if errors.Is(err, auth.ErrUnauthenticated) {
				utils.WriteJSONError(w, err.Error(), "Unauthenticated", http.StatusUnauthorized)
				return
			}
			if id.Role != role {
				logger.FromCtx(r.Context()).Warn("role check failed",
					zap.String("required", string(role)),
					zap.String("actual", string(id.Role)),
				)
				utils.WriteJSONError(w, "insufficient role", "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
