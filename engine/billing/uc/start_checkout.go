package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	authmodel "github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/billing/model"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/pkg/logger"
)

// StartCheckout use case for starting a hosted checkout session. Creates the
// provider customer on first use.
type StartCheckout struct {
	repo     Repository
	provider Provider
	urls     CheckoutURLs
	caller   *authmodel.User
	priceID  string
}

// NewStartCheckout creates a new start checkout use case
func NewStartCheckout(
	repo Repository,
	provider Provider,
	urls CheckoutURLs,
	caller *authmodel.User,
	priceID string,
) *StartCheckout {
	return &StartCheckout{
		repo:     repo,
		provider: provider,
		urls:     urls,
		caller:   caller,
		priceID:  priceID,
	}
}

// Execute returns the URL the client should redirect to
func (uc *StartCheckout) Execute(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)

	customer, err := uc.repo.GetCustomerByUserID(ctx, uc.caller.ID)
	if err != nil {
		if !errors.Is(err, ErrCustomerNotFound) {
			return "", fmt.Errorf("looking up billing customer: %w", err)
		}
		customer, err = uc.createCustomer(ctx)
		if err != nil {
			return "", err
		}
	}

	checkoutURL, err := uc.provider.CreateCheckoutSession(
		ctx,
		customer.ProviderCustomerID,
		uc.priceID,
		uc.urls.SuccessURL,
		uc.urls.CancelURL,
	)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}
	log.Info("Checkout session created", "user_id", uc.caller.ID, "price_id", uc.priceID)
	return checkoutURL, nil
}

func (uc *StartCheckout) createCustomer(ctx context.Context) (*model.Customer, error) {
	providerCustomerID, err := uc.provider.CreateCustomer(ctx, uc.caller.Email)
	if err != nil {
		return nil, fmt.Errorf("creating provider customer: %w", err)
	}
	customerID, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate customer ID: %w", err)
	}
	now := time.Now().UTC()
	customer := &model.Customer{
		ID:                 customerID,
		UserID:             uc.caller.ID,
		ProviderCustomerID: providerCustomerID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("saving billing customer: %w", err)
	}
	return customer, nil
}
