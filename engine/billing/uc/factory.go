package uc

import (
	"context"

	authmodel "github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
)

// CheckoutURLs carries the redirect targets for hosted checkout
type CheckoutURLs struct {
	SuccessURL string
	CancelURL  string
}

// Notifier announces subscription lifecycle changes. Delivery is best
// effort and never fails webhook processing.
type Notifier interface {
	SubscriptionActivated(ctx context.Context, userID core.ID, plan string) error
}

// Factory wires use cases to the repository and payment provider
type Factory struct {
	repo     Repository
	provider Provider
	urls     CheckoutURLs
	notifier Notifier
}

// NewFactory creates a new use case factory
func NewFactory(repo Repository, provider Provider, urls CheckoutURLs) *Factory {
	return &Factory{repo: repo, provider: provider, urls: urls}
}

// WithNotifier attaches a subscription lifecycle notifier
func (f *Factory) WithNotifier(n Notifier) *Factory {
	f.notifier = n
	return f
}

func (f *Factory) StartCheckout(caller *authmodel.User, priceID string) *StartCheckout {
	return NewStartCheckout(f.repo, f.provider, f.urls, caller, priceID)
}

func (f *Factory) GetSubscription(caller *authmodel.User) *GetSubscription {
	return NewGetSubscription(f.repo, caller)
}

func (f *Factory) RecordEvent(providerEventID, eventType string, payload []byte) *RecordEvent {
	return NewRecordEvent(f.repo, f.notifier, providerEventID, eventType, payload)
}
