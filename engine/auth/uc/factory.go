package uc

import (
	"context"

	"github.com/substratehq/substrate/engine/core"
)

// Notifier delivers account lifecycle email. Delivery is best effort and
// never fails the triggering operation.
type Notifier interface {
	SendWelcome(ctx context.Context, email string) error
}

// Factory wires use cases to the repository so handlers never touch data
// access directly.
type Factory struct {
	repo     Repository
	notifier Notifier
}

// NewFactory creates a new use case factory
func NewFactory(repo Repository) *Factory {
	return &Factory{repo: repo}
}

// WithNotifier attaches a lifecycle email notifier
func (f *Factory) WithNotifier(n Notifier) *Factory {
	f.notifier = n
	return f
}

func (f *Factory) BootstrapSystem(email string) *BootstrapSystem {
	return NewBootstrapSystem(f.repo, email)
}

func (f *Factory) CreateUser(input *CreateUserInput) *CreateUser {
	return NewCreateUser(f.repo, f.notifier, input)
}

func (f *Factory) GetUser(userID core.ID) *GetUser {
	return NewGetUser(f.repo, userID)
}

func (f *Factory) ListUsers() *ListUsers {
	return NewListUsers(f.repo)
}

func (f *Factory) UpdateUser(userID core.ID, input *UpdateUserInput) *UpdateUser {
	return NewUpdateUser(f.repo, userID, input)
}

func (f *Factory) DeleteUser(userID core.ID) *DeleteUser {
	return NewDeleteUser(f.repo, userID)
}

func (f *Factory) GenerateAPIKey(userID core.ID) *GenerateAPIKey {
	return NewGenerateAPIKey(f.repo, userID)
}

func (f *Factory) ValidateAPIKey(plaintext string) *ValidateAPIKey {
	return NewValidateAPIKey(f.repo, plaintext)
}

func (f *Factory) ListAPIKeys(userID core.ID) *ListAPIKeys {
	return NewListAPIKeys(f.repo, userID)
}

func (f *Factory) RevokeAPIKey(userID core.ID, keyID core.ID) *RevokeAPIKey {
	return NewRevokeAPIKey(f.repo, userID, keyID)
}
