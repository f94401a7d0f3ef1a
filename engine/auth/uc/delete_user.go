package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
)

// DeleteUser use case for deleting a user
type DeleteUser struct {
	repo   Repository
	userID core.ID
}

// NewDeleteUser creates a new delete user use case
func NewDeleteUser(repo Repository, userID core.ID) *DeleteUser {
	return &DeleteUser{
		repo:   repo,
		userID: userID,
	}
}

// Execute deletes a user and all associated API keys
func (uc *DeleteUser) Execute(ctx context.Context) error {
	if err := uc.repo.DeleteUser(ctx, uc.userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return core.NewError(
				err,
				model.ErrCodeNotFound,
				map[string]any{"user_id": uc.userID},
			)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
