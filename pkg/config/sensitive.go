package config

// SensitiveString is a string that redacts itself in formatted output so
// secrets never land in logs or error messages.
type SensitiveString string

const redactedPlaceholder = "[REDACTED]"

func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return redactedPlaceholder
}

// Value returns the underlying secret.
func (s SensitiveString) Value() string {
	return string(s)
}

// MarshalText redacts the value in any text serialization.
func (s SensitiveString) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
