package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for the account/authentication domain.
// Callers match on these with errors.Is, never on rendered messages.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSameValue          = errors.New("value unchanged")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrNoUpdates          = errors.New("no updates provided")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInternal           = errors.New("internal error")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// UserNotFound creates a 404 error for a missing user record.
func UserNotFound() *AppError {
	return &AppError{
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// EmailInUse creates a 409 error for a duplicate email address.
func EmailInUse(email string) *AppError {
	return &AppError{
		Code:    "EMAIL_IN_USE",
		Message: fmt.Sprintf("email %q is already in use", email),
		Status:  http.StatusConflict,
		Err:     ErrEmailInUse,
	}
}

// EmailAlreadyVerified creates a 400 error for a repeated verification.
func EmailAlreadyVerified() *AppError {
	return &AppError{
		Code:    "EMAIL_ALREADY_VERIFIED",
		Message: "email already verified",
		Status:  http.StatusBadRequest,
		Err:     ErrAlreadyVerified,
	}
}

// InvalidCredentials creates a 401 error for a failed password check.
func InvalidCredentials() *AppError {
	return &AppError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid credentials",
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidCredentials,
	}
}

// SameValue creates a 400 error for an account edit that changes nothing.
func SameValue(field string) *AppError {
	return &AppError{
		Code:    "SAME_VALUE",
		Message: fmt.Sprintf("new %s must be different from the current %s", field, field),
		Status:  http.StatusBadRequest,
		Err:     ErrSameValue,
	}
}

// InvalidToken creates a 401 error for a token whose signature, structure, or
// purpose is wrong. The purpose qualifies the message only.
func InvalidToken(purpose string) *AppError {
	return &AppError{
		Code:    "INVALID_TOKEN",
		Message: fmt.Sprintf("invalid %s token", purpose),
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidToken,
	}
}

// ExpiredToken creates a 401 error for a structurally valid but expired token.
func ExpiredToken(purpose string) *AppError {
	return &AppError{
		Code:    "EXPIRED_TOKEN",
		Message: fmt.Sprintf("%s token has expired", purpose),
		Status:  http.StatusUnauthorized,
		Err:     ErrExpiredToken,
	}
}

// InvalidRefreshToken creates a 401 error for a refresh token that is forged,
// revoked, or not bound to the claimed user.
func InvalidRefreshToken() *AppError {
	return &AppError{
		Code:    "INVALID_REFRESH_TOKEN",
		Message: "invalid refresh token",
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidRefresh,
	}
}

// NoUpdatesProvided creates a 400 error for an empty partial update.
func NoUpdatesProvided() *AppError {
	return &AppError{
		Code:    "NO_UPDATES_PROVIDED",
		Message: "no updates provided",
		Status:  http.StatusBadRequest,
		Err:     ErrNoUpdates,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Internal creates a 500 error wrapping an unexpected store or downstream
// failure. The wrapped error is never rendered to clients.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, ErrAlreadyVerified),
		errors.Is(err, ErrSameValue),
		errors.Is(err, ErrNoUpdates),
		errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrExpiredToken),
		errors.Is(err, ErrInvalidRefresh),
		errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
