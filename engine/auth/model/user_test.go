package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	t.Run("Should accept known roles", func(t *testing.T) {
		assert.True(t, RoleAdmin.Valid())
		assert.True(t, RoleMember.Valid())
	})
	t.Run("Should reject unknown roles", func(t *testing.T) {
		assert.False(t, Role("superuser").Valid())
		assert.False(t, Role("").Valid())
	})
}

func TestStatus_Valid(t *testing.T) {
	t.Run("Should accept known statuses", func(t *testing.T) {
		assert.True(t, StatusActive.Valid())
		assert.True(t, StatusSuspended.Valid())
	})
	t.Run("Should reject unknown statuses", func(t *testing.T) {
		assert.False(t, Status("deleted").Valid())
	})
}

func TestUser_IsAdmin(t *testing.T) {
	t.Run("Should report admin role", func(t *testing.T) {
		assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
		assert.False(t, (&User{Role: RoleMember}).IsAdmin())
	})
}
