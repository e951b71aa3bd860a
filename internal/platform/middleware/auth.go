package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/MatheusPlinio/DotWysion/pkg/requestcontext"
)

// JWTValidator validates a bearer token and extracts its claims.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims carries the identity fields the attendance routes need.
type JWTClaims struct {
	UserID   string
	UserName string
}

// RequireAuth enforces a valid bearer token and injects the caller identity
// into the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err.Error(),
				)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := requestcontext.WithUserID(r.Context(), claims.UserID)
			ctx = requestcontext.WithUserName(ctx, claims.UserName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
