package model

import (
	"time"

	"github.com/substratehq/substrate/engine/core"
)

// Role represents user access level
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid checks if the role is a valid value
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// Status represents the lifecycle state of a user account
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Valid checks if the status is a valid value
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusSuspended
}

// User represents a system user
type User struct {
	ID        core.ID   `db:"id"         json:"id"`
	Email     string    `db:"email"      json:"email"`
	Role      Role      `db:"role"       json:"role"`
	Status    Status    `db:"status"     json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
