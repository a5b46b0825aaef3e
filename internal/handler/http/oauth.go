package http

import (
	"log/slog"
	"net/http"

	"github.com/MrValraven/greendash-core/internal/service"
)

// OAuthHandler handles the Google OAuth login endpoints.
type OAuthHandler struct {
	service *service.GoogleAuthService
	cookies CookieConfig
	logger  *slog.Logger
}

// NewOAuthHandler creates a new OAuth HTTP handler.
func NewOAuthHandler(svc *service.GoogleAuthService, cookies CookieConfig, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{service: svc, cookies: cookies, logger: logger}
}

// GoogleLogin handles GET /api/v1/auth/oauth/google and redirects the browser
// to Google's consent screen.
func (h *OAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.service.AuthURL(), http.StatusFound)
}

// GoogleCallback handles GET /api/v1/auth/oauth/google/callback?code=...
func (h *OAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "authorization code is required"},
		})
		return
	}

	pair, err := h.service.HandleCallback(r.Context(), code)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	h.cookies.setSession(w, pair)
	writeJSON(w, http.StatusOK, response{
		Data: SessionResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}
