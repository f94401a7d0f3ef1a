package core

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

// ID is a globally unique, lexicographically sortable identifier (KSUID).
type ID string

// NewID generates a new unique ID
func NewID() (ID, error) {
	id, err := ksuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return ID(id.String()), nil
}

// MustNewID generates a new unique ID and panics on failure
func MustNewID() ID {
	id, err := NewID()
	if err != nil {
		panic(err)
	}
	return id
}

// ParseID validates that the given string is a well-formed ID
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("id must not be empty")
	}
	if _, err := ksuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(s), nil
}

func (i ID) String() string {
	return string(i)
}

// IsZero reports whether the ID is unset
func (i ID) IsZero() bool {
	return i == ""
}
