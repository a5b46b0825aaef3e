package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/MrValraven/greendash-core/internal/service"
	"github.com/MrValraven/greendash-core/pkg/middleware"
	"github.com/MrValraven/greendash-core/pkg/validator"
)

// UserHandler handles HTTP requests for the authenticated account endpoints.
type UserHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// EditAccountRequest is the JSON request body for editing a single account
// field. Field selects which credential changes; CurrentPassword
// re-authenticates the caller before any mutation.
type EditAccountRequest struct {
	Field           string `json:"field" validate:"required,oneof=email password"`
	Value           string `json:"value" validate:"required"`
	CurrentPassword string `json:"current_password" validate:"required,min=8"`
}

// --- Handlers ---

// Me handles GET /api/v1/auth/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	profile, err := h.service.GetCurrentUser(r.Context(), userID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: profile})
}

// EditAccount handles PUT /api/v1/auth/users
func (h *UserHandler) EditAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == 0 {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "user not authenticated"},
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req EditAccountRequest
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

	// The two legs carry different validation rules; a new email must be a
	// valid address, a new password must meet the length floor.
	switch req.Field {
	case "email":
		if err := validator.Var(req.Value, "email"); err != nil {
			writeValidationError(w, err)
			return
		}
		user, err := h.service.UpdateEmail(r.Context(), userID, req.Value, req.CurrentPassword)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, response{Data: user.Profile()})
	case "password":
		if err := validator.Var(req.Value, "min=8"); err != nil {
			writeValidationError(w, err)
			return
		}
		user, err := h.service.UpdatePassword(r.Context(), userID, req.Value, req.CurrentPassword)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, response{Data: user.Profile()})
	}
}
