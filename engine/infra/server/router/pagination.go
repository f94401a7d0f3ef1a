package router

import (
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the page size used when the client sends none.
	DefaultLimit = 20
	// MaxLimit is the hard ceiling on page size regardless of the request.
	MaxLimit = 100
)

// LimitOrDefault returns a sanitized page size. A missing or malformed value
// yields def; anything above maxLimit is clamped down to it.
func LimitOrDefault(raw string, def int, maxLimit int) int {
	if def <= 0 {
		def = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return def
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n <= 0 {
		return def
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// OffsetOrDefault returns a sanitized, non-negative offset.
func OffsetOrDefault(raw string) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
