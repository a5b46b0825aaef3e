package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MrValraven/greendash-core/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched
// with correlation_id, user_id and any active trace. Handlers retrieve it
// with logger.FromContext. Mount after RequestLogging so the correlation
// id is already set.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// The auth middleware sets the context key; X-User-ID covers
			// internal callers that bypass Auth.
			userID := ""
			if id := UserIDFromContext(ctx); id != 0 {
				userID = strconv.FormatInt(id, 10)
			}
			if userID == "" {
				userID = r.Header.Get("X-User-ID")
			}
			if userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
