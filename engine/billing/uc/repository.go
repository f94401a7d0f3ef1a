package uc

import (
	"context"
	"time"

	"github.com/substratehq/substrate/engine/billing/model"
	"github.com/substratehq/substrate/engine/core"
)

// Repository defines all data access operations for the billing domain
type Repository interface {
	CreateCustomer(ctx context.Context, customer *model.Customer) error
	GetCustomerByUserID(ctx context.Context, userID core.ID) (*model.Customer, error)
	GetCustomerByProviderID(ctx context.Context, providerCustomerID string) (*model.Customer, error)

	UpsertSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscriptionByCustomerID(ctx context.Context, customerID core.ID) (*model.Subscription, error)

	// RecordEvent inserts a webhook event, returning ErrEventExists when the
	// provider event ID was already recorded.
	RecordEvent(ctx context.Context, event *model.Event) error
	// GetEventByProviderID returns a recorded event, or ErrEventNotFound.
	GetEventByProviderID(ctx context.Context, providerEventID string) (*model.Event, error)
	// MarkEventProcessed stamps the event as applied.
	MarkEventProcessed(ctx context.Context, eventID core.ID, processedAt time.Time) error
}

// Provider is the payment provider surface the billing use cases need
type Provider interface {
	CreateCustomer(ctx context.Context, email string) (providerCustomerID string, err error)
	CreateCheckoutSession(
		ctx context.Context,
		providerCustomerID string,
		priceID string,
		successURL string,
		cancelURL string,
	) (checkoutURL string, err error)
}
