package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
)

// UpdateUserInput represents the input for updating a user
type UpdateUserInput struct {
	Email  *string       `json:"email,omitempty"`
	Role   *model.Role   `json:"role,omitempty"`
	Status *model.Status `json:"status,omitempty"`
}

// UpdateUser use case for updating an existing user
type UpdateUser struct {
	repo   Repository
	userID core.ID
	input  *UpdateUserInput
}

// NewUpdateUser creates a new update user use case
func NewUpdateUser(repo Repository, userID core.ID, input *UpdateUserInput) *UpdateUser {
	return &UpdateUser{
		repo:   repo,
		userID: userID,
		input:  input,
	}
}

// Execute updates a user
func (uc *UpdateUser) Execute(ctx context.Context) (*model.User, error) {
	user, err := uc.repo.GetUserByID(ctx, uc.userID)
	if err != nil {
		return nil, core.NewError(
			errors.New("user not found"),
			model.ErrCodeNotFound,
			map[string]any{"user_id": uc.userID},
		)
	}

	// Check if email is being changed and already exists
	if uc.input.Email != nil && *uc.input.Email != user.Email {
		existingUser, err := uc.repo.GetUserByEmail(ctx, *uc.input.Email)
		if err == nil && existingUser != nil && existingUser.ID != uc.userID {
			return nil, core.NewError(
				fmt.Errorf("email already exists"),
				model.ErrCodeEmailExists,
				map[string]any{"email": *uc.input.Email},
			)
		}
	}

	if uc.input.Email != nil {
		user.Email = *uc.input.Email
	}
	if uc.input.Role != nil {
		if !uc.input.Role.Valid() {
			return nil, core.NewError(
				fmt.Errorf("invalid role %q", *uc.input.Role),
				model.ErrCodeInvalidRole,
				nil,
			)
		}
		user.Role = *uc.input.Role
	}
	if uc.input.Status != nil {
		user.Status = *uc.input.Status
	}
	user.UpdatedAt = time.Now().UTC()

	if err := uc.repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
