package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/arnavmishra07/taskify-backend/internal/services"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	emailKey  contextKey = "email"
)

// RequireAuth verifies the bearer token on protected routes and binds the
// authenticated identity into the request context. Requests with a
// missing, malformed, invalid or expired token are rejected with 401
// before reaching the handler. The binding is request-scoped only.
func RequireAuth(tokens *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				unauthorized(w, "Authentication required")
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, emailKey, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken returns the credential from an "Authorization: Bearer
// <token>" header, or "" when absent.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return strings.TrimSpace(header)
}

// UserIDFrom returns the authenticated user's id bound by RequireAuth.
func UserIDFrom(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

// EmailFrom returns the authenticated user's email bound by RequireAuth.
func EmailFrom(ctx context.Context) string {
	if email, ok := ctx.Value(emailKey).(string); ok {
		return email
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
