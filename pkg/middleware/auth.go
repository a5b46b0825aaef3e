package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKeyType string

const userIDKey contextKeyType = "user_id"

// AccessTokenCookie is the cookie carrying the access token for browser
// clients. API clients use the Authorization header instead.
const AccessTokenCookie = "token"

// TokenValidator validates an access token and returns the user id it was
// issued to. This allows the service to inject its own validation logic.
type TokenValidator func(token string) (int64, error)

// Auth validates the request's access token and injects the user id into the
// context. The token is read from the Authorization bearer header first, then
// from the access-token cookie.
func Auth(validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(AccessTokenCookie); err == nil {
					token = c.Value
				}
			}
			if token == "" {
				writeAuthError(w, "missing access token")
				return
			}

			userID, err := validate(token)
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user id from the request
// context. Zero means no authenticated user.
func UserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    "UNAUTHORIZED",
		"message": message,
	})
}
