package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrValraven/greendash-core/internal/auth"
	"github.com/MrValraven/greendash-core/internal/service"
	"github.com/MrValraven/greendash-core/pkg/health"
	"github.com/MrValraven/greendash-core/pkg/middleware"
)

// NewRouter creates a chi router with all account service routes registered.
func NewRouter(
	authService *service.AuthService,
	googleService *service.GoogleAuthService,
	tokens *auth.TokenManager,
	healthHandler *health.Handler,
	cookies CookieConfig,
	corsConfig CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("auth"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(authService, cookies, logger)
	userHandler := NewUserHandler(authService, logger)
	oauthHandler := NewOAuthHandler(googleService, cookies, logger)

	// Token validator bridging the auth middleware to the token manager.
	tokenValidator := func(token string) (int64, error) {
		return tokens.Verify(token, auth.PurposeAccess)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/users/register", authHandler.Register)
			r.Post("/users/login", authHandler.Login)
			r.Post("/users/password/reset-request", authHandler.RequestPasswordReset)
			r.Post("/users/password/reset", authHandler.ResetPassword)
		})

		r.Get("/users/email/verify", authHandler.VerifyEmail)
		r.Get("/tokens/refresh", authHandler.RefreshToken)

		r.Get("/oauth/google", oauthHandler.GoogleLogin)
		r.Get("/oauth/google/callback", oauthHandler.GoogleCallback)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/users/logout", authHandler.Logout)
			r.Get("/users/me", userHandler.Me)

			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)
				r.Put("/users", userHandler.EditAccount)
			})
		})
	})

	return r
}
