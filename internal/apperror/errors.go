// Package apperror provides the domain error type used across Tagboard.
// Services return these errors; the Echo error handler in internal/app turns
// them into JSON for /api requests and into an HTML error page otherwise.
//
// Raw database or Redis errors never reach the client. Repositories wrap
// them with fmt.Errorf and services either pass an AppError through or
// wrap the failure with NewInternal.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries an HTTP status, a machine-readable type, and a message
// that is safe to show an admin.
type AppError struct {
	// Code is the HTTP status code (e.g., 404, 422, 500).
	Code int `json:"-"`

	// Type is a stable classifier such as "not_found" or "validation_error".
	Type string `json:"type"`

	// Message is a human-readable description safe for the client.
	Message string `json:"message"`

	// Internal holds the underlying cause for logging. Never sent to clients.
	Internal error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal cause to errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Internal
}

func newError(code int, typ, message string) *AppError {
	return &AppError{Code: code, Type: typ, Message: message}
}

// NewNotFound creates a 404 error, e.g. for an unknown tag or product id.
func NewNotFound(message string) *AppError {
	return newError(http.StatusNotFound, "not_found", message)
}

// NewBadRequest creates a 400 error for malformed requests.
func NewBadRequest(message string) *AppError {
	return newError(http.StatusBadRequest, "bad_request", message)
}

// NewConflict creates a 409 error, typically a duplicate slug.
func NewConflict(message string) *AppError {
	return newError(http.StatusConflict, "conflict", message)
}

// NewValidation creates a 422 error for well-formed input that breaks a
// business rule (empty condition group, archived tag, reversed price range).
func NewValidation(message string) *AppError {
	return newError(http.StatusUnprocessableEntity, "validation_error", message)
}

// NewTooManyRequests creates a 429 error for the rate limiter.
func NewTooManyRequests(message string) *AppError {
	return newError(http.StatusTooManyRequests, "rate_limited", message)
}

// errNotWired is the internal cause for handlers whose dependency is nil.
var errNotWired = errors.New("dependency not wired")

// NewNotWired creates a 500 error for handlers invoked before their
// dependency was configured.
func NewNotWired() *AppError {
	return NewInternal(errNotWired)
}

// NewInternal creates a 500 error. The cause is kept for logs; the client
// sees a generic message.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:     http.StatusInternalServerError,
		Type:     "internal_error",
		Message:  "An unexpected error occurred. Please try again.",
		Internal: err,
	}
}

// SafeMessage returns the client-safe message for err. Non-AppErrors get a
// generic message so table names or query text never leak.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "an unexpected error occurred"
}

// SafeCode returns the HTTP status for err, or 500 for non-AppErrors.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Is reports whether err is an AppError with the given status code.
func Is(err error, code int) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
