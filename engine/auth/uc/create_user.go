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

// CreateUserInput represents the input for creating a user
type CreateUserInput struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// welcomeEmailTimeout bounds the fire-and-forget welcome delivery
const welcomeEmailTimeout = 30 * time.Second

// CreateUser use case for creating a new user
type CreateUser struct {
	repo     Repository
	notifier Notifier
	input    *CreateUserInput
}

// NewCreateUser creates a new create user use case
func NewCreateUser(repo Repository, notifier Notifier, input *CreateUserInput) *CreateUser {
	return &CreateUser{
		repo:     repo,
		notifier: notifier,
		input:    input,
	}
}

// Execute creates a new user
func (uc *CreateUser) Execute(ctx context.Context) (*model.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("Creating user", "email", uc.input.Email, "role", uc.input.Role)
	if _, err := mail.ParseAddress(uc.input.Email); err != nil {
		return nil, core.NewError(
			fmt.Errorf("invalid email address"),
			model.ErrCodeInvalidEmail,
			map[string]any{"email": uc.input.Email},
		)
	}
	if !uc.input.Role.Valid() {
		return nil, core.NewError(
			fmt.Errorf("invalid role %q", uc.input.Role),
			model.ErrCodeInvalidRole,
			nil,
		)
	}
	// Check if user already exists
	existingUser, err := uc.repo.GetUserByEmail(ctx, uc.input.Email)
	if err != nil {
		// User not found is expected here; fail fast on anything else
		if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("checking existing user: %w", err)
		}
	} else if existingUser != nil {
		return nil, ErrEmailExists
	}
	userID, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}
	now := time.Now().UTC()
	user := &model.User{
		ID:        userID,
		Email:     uc.input.Email,
		Role:      uc.input.Role,
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Info("User created successfully", "user_id", user.ID, "email", user.Email, "role", user.Role)
	uc.sendWelcome(ctx, user.Email)
	return user, nil
}

// sendWelcome dispatches the onboarding email without holding up the
// request. The detached context survives the request ending.
func (uc *CreateUser) sendWelcome(ctx context.Context, email string) {
	if uc.notifier == nil {
		return
	}
	log := logger.FromContext(ctx)
	bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), welcomeEmailTimeout)
	go func() {
		defer cancel()
		if err := uc.notifier.SendWelcome(bgCtx, email); err != nil {
			log.Warn("Welcome email not delivered", "email", email, "error", err)
		}
	}()
}
