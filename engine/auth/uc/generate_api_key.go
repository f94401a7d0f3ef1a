package uc

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"time"

	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// GenerateAPIKey use case for generating a new API key for a user
type GenerateAPIKey struct {
	repo   Repository
	userID core.ID
}

// NewGenerateAPIKey creates a new generate API key use case
func NewGenerateAPIKey(repo Repository, userID core.ID) *GenerateAPIKey {
	return &GenerateAPIKey{
		repo:   repo,
		userID: userID,
	}
}

// Execute generates a new API key and returns the plaintext exactly once
func (uc *GenerateAPIKey) Execute(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)

	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	keyPart := make([]byte, 32)
	for i := range keyPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random key part: %w", err)
		}
		keyPart[i] = charset[num.Int64()]
	}

	plaintext := model.KeyPrefix + string(keyPart)

	// Hash the key for storage
	hashedKey, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}

	// Fingerprint for O(1) lookups
	fingerprint := sha256.Sum256([]byte(plaintext))

	apiKey := &model.APIKey{
		ID:          core.MustNewID(),
		UserID:      uc.userID,
		Hash:        hashedKey,
		Fingerprint: fingerprint[:],
		Prefix:      model.KeyPrefix,
		CreatedAt:   time.Now().UTC(),
	}

	if err := uc.repo.CreateAPIKey(ctx, apiKey); err != nil {
		log.Error("Failed to create API key", "error", err, "user_id", uc.userID)
		return "", fmt.Errorf("failed to create API key: %w", err)
	}

	log.Info("API key generated", "user_id", uc.userID, "key_id", apiKey.ID)
	return plaintext, nil
}
