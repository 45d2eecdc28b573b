// Package httperrors carries the HTTP error model: typed application
// errors with a stable code, a user-facing message and the HTTP status.
package httperrors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// AppError is the standard error shape for HTTP responses.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail returns a copy carrying extra detail, leaving the base
// sentinel untouched.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause returns a copy wrapping the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

var (
	ErrBadRequest       = New(http.StatusBadRequest, "bad_request", "Bad request")
	ErrUnauthorized     = New(http.StatusUnauthorized, "unauthorized", "Authentication required")
	ErrForbidden        = New(http.StatusForbidden, "forbidden", "Not permitted")
	ErrNotFound         = New(http.StatusNotFound, "not_found", "Resource not found")
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
	ErrInternal         = New(http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	ErrUnavailable      = New(http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable")
)

// FromError coerces any error into an AppError, defaulting to internal.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError writes the JSON error response for err.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}
