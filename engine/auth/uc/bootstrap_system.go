package uc

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/pkg/logger"
)

// BootstrapSystem is a one-time use case that creates the very first admin
// user and API key directly against the repository, before any route can
// authenticate. It fails once an admin already exists.
type BootstrapSystem struct {
	repo  Repository
	email string
}

// NewBootstrapSystem creates a new bootstrap use case
func NewBootstrapSystem(repo Repository, email string) *BootstrapSystem {
	return &BootstrapSystem{
		repo:  repo,
		email: email,
	}
}

// Execute creates the initial admin user and returns it with the plaintext
// API key. The key is shown exactly once.
func (uc *BootstrapSystem) Execute(ctx context.Context) (*model.User, string, error) {
	log := logger.FromContext(ctx)
	if _, err := mail.ParseAddress(uc.email); err != nil {
		return nil, "", core.NewError(
			fmt.Errorf("invalid email address"),
			model.ErrCodeInvalidEmail,
			map[string]any{"email": uc.email},
		)
	}
	userID, err := core.NewID()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate user ID: %w", err)
	}
	now := time.Now().UTC()
	user := &model.User{
		ID:        userID,
		Email:     uc.email,
		Role:      model.RoleAdmin,
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.CreateInitialAdminIfNone(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyBootstrapped) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("creating initial admin: %w", err)
	}
	plaintext, err := NewGenerateAPIKey(uc.repo, user.ID).Execute(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("generating API key: %w", err)
	}
	log.Info("System bootstrapped", "user_id", user.ID, "email", user.Email)
	return user, plaintext, nil
}
