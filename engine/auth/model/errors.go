package model

// Error codes attached to core.Error values raised by the auth domain.
// They live alongside the domain types so every auth package can share
// them without importing its siblings.
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeEmailExists  = "EMAIL_EXISTS"
	ErrCodeInvalidEmail = "INVALID_EMAIL"
	ErrCodeInvalidRole  = "INVALID_ROLE"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
)
