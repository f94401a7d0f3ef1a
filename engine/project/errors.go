package project

// Error codes attached to core.Error values raised by the project domain.
const (
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeForbidden   = "FORBIDDEN"
	ErrCodeSlugExists  = "SLUG_EXISTS"
	ErrCodeInvalidName = "INVALID_NAME"
)
