package uc

import (
	"context"
	"errors"
	"fmt"

	authmodel "github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/billing"
	"github.com/substratehq/substrate/engine/billing/model"
	"github.com/substratehq/substrate/engine/core"
)

// GetSubscription use case for retrieving the caller's subscription
type GetSubscription struct {
	repo   Repository
	caller *authmodel.User
}

// NewGetSubscription creates a new get subscription use case
func NewGetSubscription(repo Repository, caller *authmodel.User) *GetSubscription {
	return &GetSubscription{
		repo:   repo,
		caller: caller,
	}
}

// Execute returns the caller's subscription, if any
func (uc *GetSubscription) Execute(ctx context.Context) (*model.Subscription, error) {
	customer, err := uc.repo.GetCustomerByUserID(ctx, uc.caller.ID)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return nil, core.NewError(
				ErrSubscriptionNotFound,
				billing.ErrCodeNotFound,
				map[string]any{"user_id": uc.caller.ID},
			)
		}
		return nil, fmt.Errorf("looking up billing customer: %w", err)
	}
	sub, err := uc.repo.GetSubscriptionByCustomerID(ctx, customer.ID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return nil, core.NewError(
				err,
				billing.ErrCodeNotFound,
				map[string]any{"user_id": uc.caller.ID},
			)
		}
		return nil, fmt.Errorf("looking up subscription: %w", err)
	}
	return sub, nil
}
