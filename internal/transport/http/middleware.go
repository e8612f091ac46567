package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"weekly-quiz-service/internal/auth"
)

type contextKey string

const claimsCtxKey contextKey = "claims"

// Authenticator requires a bearer token and stores its claims on the request context.
func Authenticator(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondMessage(w, http.StatusUnauthorized, "Authorization token required")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				respondMessage(w, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>")
				return
			}

			claims, err := jwtService.ValidateToken(parts[1])
			if err != nil {
				if errors.Is(err, auth.ErrExpiredToken) {
					respondMessage(w, http.StatusUnauthorized, "Token has expired")
				} else {
					respondMessage(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), claimsCtxKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified caller, if the request was authenticated.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey).(*auth.Claims)
	return claims, ok
}
