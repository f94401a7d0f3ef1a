package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/pkg/logger"
)

// RevokeAPIKey use case for revoking an API key owned by a user
type RevokeAPIKey struct {
	repo   Repository
	userID core.ID
	keyID  core.ID
}

// NewRevokeAPIKey creates a new revoke API key use case
func NewRevokeAPIKey(repo Repository, userID, keyID core.ID) *RevokeAPIKey {
	return &RevokeAPIKey{
		repo:   repo,
		userID: userID,
		keyID:  keyID,
	}
}

// Execute revokes the API key after verifying ownership
func (uc *RevokeAPIKey) Execute(ctx context.Context) error {
	log := logger.FromContext(ctx)

	apiKey, err := uc.repo.GetAPIKeyByID(ctx, uc.keyID)
	if err != nil {
		if errors.Is(err, ErrAPIKeyNotFound) {
			return core.NewError(
				err,
				model.ErrCodeNotFound,
				map[string]any{"key_id": uc.keyID},
			)
		}
		return fmt.Errorf("failed to get API key: %w", err)
	}

	if apiKey.UserID != uc.userID {
		return core.NewError(
			errors.New("API key does not belong to user"),
			model.ErrCodeForbidden,
			map[string]any{"key_id": uc.keyID},
		)
	}

	if err := uc.repo.DeleteAPIKey(ctx, uc.keyID); err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}

	log.Info("API key revoked", "user_id", uc.userID, "key_id", uc.keyID)
	return nil
}
