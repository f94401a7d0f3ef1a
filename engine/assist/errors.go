package assist

// Error codes attached to core.Error values raised by the assist domain.
// Provider-side failures carry the assistadapter codes instead.
const (
	ErrCodeInvalidPrompt  = "INVALID_PROMPT"
	ErrCodePromptTooLong  = "PROMPT_TOO_LONG"
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
)
