package assistadapter

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/substratehq/substrate/engine/core"
)

// Error codes attached to classified provider failures
const (
	ErrCodeRateLimited = "PROVIDER_RATE_LIMITED"
	ErrCodeAuth        = "PROVIDER_AUTH_FAILED"
	ErrCodeUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeTimeout     = "PROVIDER_TIMEOUT"
	ErrCodeProvider    = "PROVIDER_ERROR"
)

// ParseProviderError classifies a raw provider failure into a tagged error
// carrying the upstream HTTP status when one can be recovered. Providers
// rarely expose typed errors through the SDK boundary, so classification
// works on the message text the way their support docs describe failures.
func ParseProviderError(provider string, err error) *core.Error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	details := map[string]any{"provider": provider}

	if status := extractStatusCode(msg); status > 0 {
		details["status"] = status
		return core.NewError(err, codeForStatus(status), details)
	}
	switch {
	case containsAny(msg, "rate limit", "rate-limit", "too many requests", "quota exceeded", "throttl"):
		details["status"] = http.StatusTooManyRequests
		return core.NewError(err, ErrCodeRateLimited, details)
	case containsAny(msg, "invalid api key", "incorrect api key", "unauthorized", "authentication"):
		details["status"] = http.StatusUnauthorized
		return core.NewError(err, ErrCodeAuth, details)
	case containsAny(msg, "overloaded", "service unavailable", "temporarily unavailable", "try again later"):
		details["status"] = http.StatusServiceUnavailable
		return core.NewError(err, ErrCodeUnavailable, details)
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		details["status"] = http.StatusGatewayTimeout
		return core.NewError(err, ErrCodeTimeout, details)
	}
	return core.NewError(err, ErrCodeProvider, details)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrCodeAuth
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return ErrCodeUnavailable
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrCodeTimeout
	default:
		return ErrCodeProvider
	}
}

// extractStatusCode pulls a three-digit HTTP status out of message shapes
// like "status code: 429" or "API returned unexpected status code: 503"
func extractStatusCode(msg string) int {
	for _, prefix := range []string{"status code: ", "status code ", "status: ", "http "} {
		idx := strings.Index(msg, prefix)
		if idx < 0 {
			continue
		}
		start := idx + len(prefix)
		end := start
		for end < len(msg) && end < start+3 && msg[end] >= '0' && msg[end] <= '9' {
			end++
		}
		if end-start != 3 {
			continue
		}
		code, err := strconv.Atoi(msg[start:end])
		if err == nil && code >= 400 && code < 600 {
			return code
		}
	}
	return 0
}

func containsAny(msg string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
