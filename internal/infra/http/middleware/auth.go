package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/loopmeet/api/pkg/apierror"
	"github.com/loopmeet/api/pkg/logger"
	"github.com/loopmeet/api/pkg/supabase"
)

// Auth-related context keys.
const (
	UserIDKey                  = logger.ContextKeyUserID
	EmailKey  logger.ContextKey = "email"
	ClaimsKey logger.ContextKey = "auth_claims"
)

// GetUserID extracts the authenticated user ID from context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}

// GetEmail extracts the authenticated user's email claim from context.
func GetEmail(ctx context.Context) string {
	if email, ok := ctx.Value(EmailKey).(string); ok {
		return email
	}
	return ""
}

// GetClaims extracts the full token claims from context.
func GetClaims(ctx context.Context) *supabase.Claims {
	if claims, ok := ctx.Value(ClaimsKey).(*supabase.Claims); ok {
		return claims
	}
	return nil
}

// GetAccessToken extracts the raw bearer token from the request.
func GetAccessToken(r *http.Request) string {
	return bearerToken(r.Header.Get("Authorization"))
}

// Auth validates the bearer token and stashes the user ID, email, and full
// claims in the request context.
func Auth(validator *supabase.TokenValidator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				apierror.Unauthorized("Missing bearer token.").WriteJSON(w)
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				log.Debug("token rejected", "error", err, "request_id", GetRequestID(r.Context()))
				apierror.Unauthorized("Invalid or expired token.").WriteJSON(w)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID())
			ctx = context.WithValue(ctx, EmailKey, claims.Email)
			ctx = context.WithValue(ctx, ClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
