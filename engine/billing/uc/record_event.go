package uc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/substratehq/substrate/engine/billing"
	"github.com/substratehq/substrate/engine/billing/model"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/pkg/logger"
)

// subscriptionPayload is the provider event payload subset we apply locally
type subscriptionPayload struct {
	Data struct {
		Object struct {
			ID               string `json:"id"`
			Customer         string `json:"customer"`
			Status           string `json:"status"`
			CurrentPeriodEnd int64  `json:"current_period_end"`
			Plan             struct {
				ID       string `json:"id"`
				Amount   int64  `json:"amount"`
				Currency string `json:"currency"`
			} `json:"plan"`
		} `json:"object"`
	} `json:"data"`
}

// RecordEvent use case for recording and applying a verified webhook event.
// Processing is idempotent on the provider event ID: replays of fully
// processed events return ErrEventExists, while redeliveries of events that
// were recorded but never applied run the apply again so a transient failure
// cannot lose subscription state.
type RecordEvent struct {
	repo            Repository
	notifier        Notifier
	providerEventID string
	eventType       string
	payload         []byte
}

// NewRecordEvent creates a new record event use case
func NewRecordEvent(repo Repository, notifier Notifier, providerEventID, eventType string, payload []byte) *RecordEvent {
	return &RecordEvent{
		repo:            repo,
		notifier:        notifier,
		providerEventID: providerEventID,
		eventType:       eventType,
		payload:         payload,
	}
}

// Execute records the event and applies subscription changes
func (uc *RecordEvent) Execute(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if uc.providerEventID == "" || uc.eventType == "" {
		return core.NewError(
			errors.New("event id and type are required"),
			billing.ErrCodeInvalidEvent,
			nil,
		)
	}

	eventID, err := core.NewID()
	if err != nil {
		return fmt.Errorf("failed to generate event ID: %w", err)
	}
	event := &model.Event{
		ID:              eventID,
		ProviderEventID: uc.providerEventID,
		Type:            uc.eventType,
		Payload:         uc.payload,
		ReceivedAt:      time.Now().UTC(),
	}
	if err := uc.repo.RecordEvent(ctx, event); err != nil {
		if !errors.Is(err, ErrEventExists) {
			return fmt.Errorf("recording event: %w", err)
		}
		recorded, lookupErr := uc.repo.GetEventByProviderID(ctx, uc.providerEventID)
		if lookupErr != nil {
			return fmt.Errorf("looking up recorded event: %w", lookupErr)
		}
		if recorded.Processed() {
			log.Debug("Webhook event already processed", "provider_event_id", uc.providerEventID)
			return ErrEventExists
		}
		// An earlier delivery recorded the event but failed before its
		// effects stuck; run the apply again on this redelivery.
		log.Info("Reprocessing unapplied webhook event", "provider_event_id", uc.providerEventID)
		event = recorded
	}

	switch uc.eventType {
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		if err := uc.applySubscription(ctx); err != nil {
			return err
		}
	default:
		log.Debug("Webhook event recorded without local effect", "type", uc.eventType)
	}
	if err := uc.repo.MarkEventProcessed(ctx, event.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("marking event processed: %w", err)
	}
	return nil
}

func (uc *RecordEvent) applySubscription(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var payload subscriptionPayload
	if err := json.Unmarshal(uc.payload, &payload); err != nil {
		return core.NewError(
			fmt.Errorf("decoding subscription payload: %w", err),
			billing.ErrCodeInvalidEvent,
			map[string]any{"provider_event_id": uc.providerEventID},
		)
	}
	object := payload.Data.Object
	if object.ID == "" || object.Customer == "" {
		return core.NewError(
			errors.New("subscription payload missing id or customer"),
			billing.ErrCodeInvalidEvent,
			map[string]any{"provider_event_id": uc.providerEventID},
		)
	}

	customer, err := uc.repo.GetCustomerByProviderID(ctx, object.Customer)
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			// Event for a customer we never created; record-only
			log.Warn("Webhook for unknown customer", "provider_customer_id", object.Customer)
			return nil
		}
		return fmt.Errorf("looking up customer: %w", err)
	}

	status := model.SubscriptionStatus(object.Status)
	if uc.eventType == "customer.subscription.deleted" {
		status = model.SubscriptionCanceled
	}
	subID, err := core.NewID()
	if err != nil {
		return fmt.Errorf("failed to generate subscription ID: %w", err)
	}
	now := time.Now().UTC()
	sub := &model.Subscription{
		ID:                     subID,
		CustomerID:             customer.ID,
		ProviderSubscriptionID: object.ID,
		Plan:                   object.Plan.ID,
		Status:                 status,
		Amount:                 decimal.NewFromInt(object.Plan.Amount).Div(decimal.NewFromInt(100)),
		Currency:               object.Plan.Currency,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if object.CurrentPeriodEnd > 0 {
		periodEnd := time.Unix(object.CurrentPeriodEnd, 0).UTC()
		sub.CurrentPeriodEnd = &periodEnd
	}
	if err := uc.repo.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("upserting subscription: %w", err)
	}
	log.Info("Subscription state applied",
		"provider_subscription_id", object.ID,
		"status", status,
		"type", uc.eventType,
	)
	if sub.IsActive() && uc.eventType == "customer.subscription.created" {
		uc.announceActivation(ctx, customer.UserID, sub.Plan)
	}
	return nil
}

// notifyTimeout bounds the fire-and-forget activation announcement
const notifyTimeout = 30 * time.Second

func (uc *RecordEvent) announceActivation(ctx context.Context, userID core.ID, plan string) {
	if uc.notifier == nil {
		return
	}
	log := logger.FromContext(ctx)
	bgCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	go func() {
		defer cancel()
		if err := uc.notifier.SubscriptionActivated(bgCtx, userID, plan); err != nil {
			log.Warn("Subscription confirmation not delivered", "user_id", userID, "error", err)
		}
	}()
}
