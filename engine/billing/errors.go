package billing

// Error codes attached to core.Error values raised by the billing domain.
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodePaymentRequired  = "PAYMENT_REQUIRED"
	ErrCodeProviderError    = "PROVIDER_ERROR"
	ErrCodeProviderThrottle = "RESOURCE_EXHAUSTED"
	ErrCodeProviderAuth     = "UNAUTHORIZED"
	ErrCodeInvalidEvent     = "INVALID_EVENT"
	ErrCodeDuplicateEvent   = "DUPLICATE_EVENT"
)
