package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrValraven/greendash-core/internal/service"
	apperrors "github.com/MrValraven/greendash-core/pkg/errors"
	"github.com/MrValraven/greendash-core/pkg/validator"
)

// AuthHandler handles HTTP requests for session lifecycle endpoints.
type AuthHandler struct {
	service *service.AuthService
	cookies CookieConfig
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, cookies CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the JSON request body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ResetPasswordRequestRequest is the JSON request body for requesting a
// password reset email.
type ResetPasswordRequestRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the JSON request body for completing a password
// reset. The reset token itself travels in the query string.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// --- Response types ---

// SessionResponse carries the issued token pair. The same tokens are also set
// as httpOnly cookies for browser clients.
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// --- Handlers ---

// Register handles POST /api/v1/auth/users/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: user.Profile()})
}

// VerifyEmail handles GET /api/v1/auth/users/email/verify?verificationToken=...
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("verificationToken")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "verification token is required"},
		})
		return
	}

	if err := h.service.VerifyEmail(r.Context(), token); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "email verified successfully"},
	})
}

// Login handles POST /api/v1/auth/users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// An unknown email and a wrong password answer identically so the
		// login form cannot be used to probe for accounts.
		if errors.Is(err, apperrors.ErrNotFound) {
			err = apperrors.InvalidCredentials()
		}
		writeAppError(w, r, err)
		return
	}

	h.cookies.setSession(w, pair)
	writeJSON(w, http.StatusOK, response{
		Data: SessionResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken},
	})
}

// RefreshToken handles GET /api/v1/auth/tokens/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "refresh token not found"},
		})
		return
	}

	accessToken, err := h.service.RefreshAccessToken(r.Context(), cookie.Value)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	h.cookies.setAccessToken(w, accessToken)
	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"access_token": accessToken},
	})
}

// Logout handles POST /api/v1/auth/users/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	if err := h.service.Logout(r.Context(), refreshToken); err != nil {
		writeAppError(w, r, err)
		return
	}

	h.cookies.clearSession(w)
	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "logged out successfully"},
	})
}

// RequestPasswordReset handles POST /api/v1/auth/users/password/reset-request
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req ResetPasswordRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		// Unknown addresses get the same answer as known ones so this
		// endpoint cannot be used to enumerate accounts.
		if !errors.Is(err, apperrors.ErrNotFound) {
			writeAppError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "if the email exists, a password reset link has been sent"},
	})
}

// ResetPassword handles POST /api/v1/auth/users/password/reset?passwordResetToken=...
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	token := r.URL.Query().Get("passwordResetToken")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "password reset token is required"},
		})
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), token, req.NewPassword); err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "password reset successfully"},
	})
}
