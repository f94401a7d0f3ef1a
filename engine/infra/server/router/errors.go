package router

import (
	"errors"
	"fmt"
	"net/http"
)

// Common sentinel errors
var (
	ErrInternal       = errors.New("internal server error")
	ErrInvalidAddress = errors.New("invalid address")
	ErrBindError      = errors.New("server bind error")
)

// Error codes
const (
	ErrInternalCode           = "INTERNAL_ERROR"
	ErrBadRequestCode         = "BAD_REQUEST"
	ErrUnauthorizedCode       = "UNAUTHORIZED"
	ErrForbiddenCode          = "FORBIDDEN"
	ErrNotFoundCode           = "NOT_FOUND"
	ErrConflictCode           = "CONFLICT"
	ErrPaymentRequiredCode    = "PAYMENT_REQUIRED"
	ErrRateLimitedCode        = "RATE_LIMIT_EXCEEDED"
	ErrRequestTimeoutCode     = "REQUEST_TIMEOUT"
	ErrServiceUnavailableCode = "SERVICE_UNAVAILABLE"
)

// Error represents errors that can occur during server operations
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewServerError creates a new server Error
func NewServerError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapServerError wraps an existing error with a server error
func WrapServerError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// StatusFromCode returns the HTTP status for an error code. Unknown codes
// map to 500.
func StatusFromCode(code string) int {
	switch code {
	case ErrBadRequestCode:
		return http.StatusBadRequest
	case ErrUnauthorizedCode:
		return http.StatusUnauthorized
	case ErrPaymentRequiredCode:
		return http.StatusPaymentRequired
	case ErrForbiddenCode:
		return http.StatusForbidden
	case ErrNotFoundCode:
		return http.StatusNotFound
	case ErrConflictCode:
		return http.StatusConflict
	case ErrRateLimitedCode:
		return http.StatusTooManyRequests
	case ErrRequestTimeoutCode:
		return http.StatusRequestTimeout
	case ErrServiceUnavailableCode:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// CodeFromStatus returns the canonical error code for an HTTP status.
func CodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequestCode
	case http.StatusUnauthorized:
		return ErrUnauthorizedCode
	case http.StatusPaymentRequired:
		return ErrPaymentRequiredCode
	case http.StatusForbidden:
		return ErrForbiddenCode
	case http.StatusNotFound:
		return ErrNotFoundCode
	case http.StatusConflict:
		return ErrConflictCode
	case http.StatusTooManyRequests:
		return ErrRateLimitedCode
	case http.StatusRequestTimeout:
		return ErrRequestTimeoutCode
	case http.StatusServiceUnavailable:
		return ErrServiceUnavailableCode
	default:
		return ErrInternalCode
	}
}
