package uc

import (
	"context"
	"fmt"

	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
)

// ListAPIKeys use case for listing a user's API keys
type ListAPIKeys struct {
	repo   Repository
	userID core.ID
}

// NewListAPIKeys creates a new list API keys use case
func NewListAPIKeys(repo Repository, userID core.ID) *ListAPIKeys {
	return &ListAPIKeys{
		repo:   repo,
		userID: userID,
	}
}

// Execute returns all API keys belonging to the user
func (uc *ListAPIKeys) Execute(ctx context.Context) ([]*model.APIKey, error) {
	keys, err := uc.repo.ListAPIKeysByUserID(ctx, uc.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	return keys, nil
}
