package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/substratehq/substrate/engine/core"
)

// SubscriptionStatus mirrors the lifecycle states reported by the payment provider
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Customer links a local user to a payment provider customer record
type Customer struct {
	ID                 core.ID   `db:"id"                   json:"id"`
	UserID             core.ID   `db:"user_id"              json:"user_id"`
	ProviderCustomerID string    `db:"provider_customer_id" json:"provider_customer_id"`
	CreatedAt          time.Time `db:"created_at"           json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"           json:"updated_at"`
}

// Subscription is the local mirror of a provider subscription
type Subscription struct {
	ID                     core.ID            `db:"id"                       json:"id"`
	CustomerID             core.ID            `db:"customer_id"              json:"customer_id"`
	ProviderSubscriptionID string             `db:"provider_subscription_id" json:"provider_subscription_id"`
	Plan                   string             `db:"plan"                     json:"plan"`
	Status                 SubscriptionStatus `db:"status"                   json:"status"`
	Amount                 decimal.Decimal    `db:"amount"                   json:"amount"`
	Currency               string             `db:"currency"                 json:"currency"`
	CurrentPeriodEnd       *time.Time         `db:"current_period_end"       json:"current_period_end,omitempty"`
	CreatedAt              time.Time          `db:"created_at"               json:"created_at"`
	UpdatedAt              time.Time          `db:"updated_at"               json:"updated_at"`
}

// IsActive reports whether the subscription entitles the customer to service
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionActive || s.Status == SubscriptionTrialing
}

// Event is a webhook event recorded for idempotent processing. ProcessedAt
// stays nil until the event's local effects have been applied, so a delivery
// that fails mid-way can be retried from the provider's redelivery.
type Event struct {
	ID              core.ID    `db:"id"                json:"id"`
	ProviderEventID string     `db:"provider_event_id" json:"provider_event_id"`
	Type            string     `db:"type"              json:"type"`
	Payload         []byte     `db:"payload"           json:"payload"`
	ReceivedAt      time.Time  `db:"received_at"       json:"received_at"`
	ProcessedAt     *time.Time `db:"processed_at"      json:"processed_at,omitempty"`
}

// Processed reports whether the event's local effects were applied
func (e *Event) Processed() bool {
	return e.ProcessedAt != nil
}
