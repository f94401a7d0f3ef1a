package uc_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authmodel "github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/billing"
	"github.com/substratehq/substrate/engine/billing/model"
	"github.com/substratehq/substrate/engine/billing/uc"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/pkg/logger"
)

// fakeRepo is an in-memory Repository for use case tests
type fakeRepo struct {
	customers     map[core.ID]*model.Customer
	subscriptions map[string]*model.Subscription
	events        map[string]*model.Event
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		customers:     make(map[core.ID]*model.Customer),
		subscriptions: make(map[string]*model.Subscription),
		events:        make(map[string]*model.Event),
	}
}

func (r *fakeRepo) CreateCustomer(_ context.Context, customer *model.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeRepo) GetCustomerByUserID(_ context.Context, userID core.ID) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.UserID == userID {
			return c, nil
		}
	}
	return nil, uc.ErrCustomerNotFound
}

func (r *fakeRepo) GetCustomerByProviderID(_ context.Context, providerID string) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.ProviderCustomerID == providerID {
			return c, nil
		}
	}
	return nil, uc.ErrCustomerNotFound
}

func (r *fakeRepo) UpsertSubscription(_ context.Context, sub *model.Subscription) error {
	r.subscriptions[sub.ProviderSubscriptionID] = sub
	return nil
}

func (r *fakeRepo) GetSubscriptionByCustomerID(_ context.Context, customerID core.ID) (*model.Subscription, error) {
	for _, s := range r.subscriptions {
		if s.CustomerID == customerID {
			return s, nil
		}
	}
	return nil, uc.ErrSubscriptionNotFound
}

func (r *fakeRepo) RecordEvent(_ context.Context, event *model.Event) error {
	if _, ok := r.events[event.ProviderEventID]; ok {
		return uc.ErrEventExists
	}
	r.events[event.ProviderEventID] = event
	return nil
}

func (r *fakeRepo) GetEventByProviderID(_ context.Context, providerEventID string) (*model.Event, error) {
	event, ok := r.events[providerEventID]
	if !ok {
		return nil, uc.ErrEventNotFound
	}
	return event, nil
}

func (r *fakeRepo) MarkEventProcessed(_ context.Context, eventID core.ID, processedAt time.Time) error {
	for _, event := range r.events {
		if event.ID == eventID {
			event.ProcessedAt = &processedAt
			return nil
		}
	}
	return uc.ErrEventNotFound
}

// flakyRepo fails a configured number of subscription upserts before recovering
type flakyRepo struct {
	*fakeRepo
	upsertFailures int
}

func (r *flakyRepo) UpsertSubscription(ctx context.Context, sub *model.Subscription) error {
	if r.upsertFailures > 0 {
		r.upsertFailures--
		return fmt.Errorf("connection reset")
	}
	return r.fakeRepo.UpsertSubscription(ctx, sub)
}

// fakeProvider is an in-memory Provider for use case tests
type fakeProvider struct {
	customers int
	sessions  int
	fail      bool
}

func (p *fakeProvider) CreateCustomer(_ context.Context, _ string) (string, error) {
	if p.fail {
		return "", fmt.Errorf("provider down")
	}
	p.customers++
	return fmt.Sprintf("cus_%d", p.customers), nil
}

func (p *fakeProvider) CreateCheckoutSession(
	_ context.Context,
	customerID, priceID, _, _ string,
) (string, error) {
	if p.fail {
		return "", fmt.Errorf("provider down")
	}
	p.sessions++
	return fmt.Sprintf("https://checkout.example/%s/%s/%d", customerID, priceID, p.sessions), nil
}

func testContext() context.Context {
	return logger.ContextWithLogger(context.Background(), logger.NewForTests())
}

func caller() *authmodel.User {
	return &authmodel.User{
		ID:     core.MustNewID(),
		Email:  "payer@example.com",
		Role:   authmodel.RoleMember,
		Status: authmodel.StatusActive,
	}
}

func testFactory(repo *fakeRepo, provider *fakeProvider) *uc.Factory {
	return uc.NewFactory(repo, provider, uc.CheckoutURLs{
		SuccessURL: "https://app.example/success",
		CancelURL:  "https://app.example/cancel",
	})
}

func TestStartCheckout(t *testing.T) {
	t.Run("Should create provider customer on first checkout", func(t *testing.T) {
		repo := newFakeRepo()
		provider := &fakeProvider{}
		factory := testFactory(repo, provider)
		user := caller()
		url, err := factory.StartCheckout(user, "price_pro").Execute(testContext())
		require.NoError(t, err)
		assert.Contains(t, url, "cus_1")
		assert.Equal(t, 1, provider.customers)
		require.Len(t, repo.customers, 1)
		for _, c := range repo.customers {
			assert.Equal(t, user.ID, c.UserID)
			assert.Equal(t, "cus_1", c.ProviderCustomerID)
		}
	})
	t.Run("Should reuse existing customer on later checkouts", func(t *testing.T) {
		repo := newFakeRepo()
		provider := &fakeProvider{}
		factory := testFactory(repo, provider)
		user := caller()
		_, err := factory.StartCheckout(user, "price_pro").Execute(testContext())
		require.NoError(t, err)
		_, err = factory.StartCheckout(user, "price_pro").Execute(testContext())
		require.NoError(t, err)
		assert.Equal(t, 1, provider.customers)
		assert.Equal(t, 2, provider.sessions)
	})
	t.Run("Should surface provider failures", func(t *testing.T) {
		repo := newFakeRepo()
		factory := testFactory(repo, &fakeProvider{fail: true})
		_, err := factory.StartCheckout(caller(), "price_pro").Execute(testContext())
		assert.Error(t, err)
	})
}

type fakeNotifier struct {
	activated chan string
}

func (n *fakeNotifier) SubscriptionActivated(_ context.Context, _ core.ID, plan string) error {
	n.activated <- plan
	return nil
}

func subscriptionEvent(eventID, customer, status string) (string, string, []byte) {
	payload := fmt.Sprintf(`{
		"id": %q,
		"type": "customer.subscription.updated",
		"data": {"object": {
			"id": "sub_1",
			"customer": %q,
			"status": %q,
			"current_period_end": 1924905600,
			"plan": {"id": "price_pro", "amount": 2900, "currency": "usd"}
		}}
	}`, eventID, customer, status)
	return eventID, "customer.subscription.updated", []byte(payload)
}

func TestRecordEvent(t *testing.T) {
	t.Run("Should apply subscription state for known customer", func(t *testing.T) {
		repo := newFakeRepo()
		provider := &fakeProvider{}
		factory := testFactory(repo, provider)
		user := caller()
		_, err := factory.StartCheckout(user, "price_pro").Execute(testContext())
		require.NoError(t, err)

		id, typ, payload := subscriptionEvent("evt_1", "cus_1", "active")
		require.NoError(t, factory.RecordEvent(id, typ, payload).Execute(testContext()))

		sub, err := factory.GetSubscription(user).Execute(testContext())
		require.NoError(t, err)
		assert.Equal(t, model.SubscriptionActive, sub.Status)
		assert.Equal(t, "price_pro", sub.Plan)
		assert.Equal(t, "29", sub.Amount.String())
		require.NotNil(t, sub.CurrentPeriodEnd)
	})
	t.Run("Should return ErrEventExists on replay without re-applying", func(t *testing.T) {
		repo := newFakeRepo()
		factory := testFactory(repo, &fakeProvider{})
		user := caller()
		_, err := factory.StartCheckout(user, "price_pro").Execute(testContext())
		require.NoError(t, err)

		id, typ, payload := subscriptionEvent("evt_dup", "cus_1", "active")
		require.NoError(t, factory.RecordEvent(id, typ, payload).Execute(testContext()))
		require.NotNil(t, repo.events[id].ProcessedAt)
		err = factory.RecordEvent(id, typ, payload).Execute(testContext())
		assert.ErrorIs(t, err, uc.ErrEventExists)
	})
	t.Run("Should apply subscription on redelivery after a failed first attempt", func(t *testing.T) {
		repo := &flakyRepo{fakeRepo: newFakeRepo(), upsertFailures: 1}
		factory := uc.NewFactory(repo, &fakeProvider{}, uc.CheckoutURLs{
			SuccessURL: "https://app.example/success",
			CancelURL:  "https://app.example/cancel",
		})
		user := caller()
		_, err := factory.StartCheckout(user, "price_pro").Execute(testContext())
		require.NoError(t, err)

		id, typ, payload := subscriptionEvent("evt_retry", "cus_1", "active")
		err = factory.RecordEvent(id, typ, payload).Execute(testContext())
		require.Error(t, err)
		require.Len(t, repo.events, 1)
		assert.Nil(t, repo.events[id].ProcessedAt)

		require.NoError(t, factory.RecordEvent(id, typ, payload).Execute(testContext()))
		sub, err := factory.GetSubscription(user).Execute(testContext())
		require.NoError(t, err)
		assert.Equal(t, model.SubscriptionActive, sub.Status)
		require.NotNil(t, repo.events[id].ProcessedAt)
	})
	t.Run("Should announce activation on created events when a notifier is attached", func(t *testing.T) {
		repo := newFakeRepo()
		notifier := &fakeNotifier{activated: make(chan string, 1)}
		factory := testFactory(repo, &fakeProvider{}).WithNotifier(notifier)
		user := caller()
		_, err := factory.StartCheckout(user, "price_pro").Execute(testContext())
		require.NoError(t, err)

		_, _, payload := subscriptionEvent("evt_new", "cus_1", "active")
		require.NoError(
			t,
			factory.RecordEvent("evt_new", "customer.subscription.created", payload).Execute(testContext()),
		)
		select {
		case plan := <-notifier.activated:
			assert.Equal(t, "price_pro", plan)
		case <-time.After(2 * time.Second):
			t.Fatal("activation was never announced")
		}
	})
	t.Run("Should record events for unknown customers without applying", func(t *testing.T) {
		repo := newFakeRepo()
		factory := testFactory(repo, &fakeProvider{})
		id, typ, payload := subscriptionEvent("evt_2", "cus_unknown", "active")
		require.NoError(t, factory.RecordEvent(id, typ, payload).Execute(testContext()))
		assert.Len(t, repo.events, 1)
		assert.Empty(t, repo.subscriptions)
	})
	t.Run("Should mark deleted subscriptions canceled", func(t *testing.T) {
		repo := newFakeRepo()
		factory := testFactory(repo, &fakeProvider{})
		user := caller()
		_, err := factory.StartCheckout(user, "price_pro").Execute(testContext())
		require.NoError(t, err)

		_, _, payload := subscriptionEvent("evt_3", "cus_1", "active")
		require.NoError(
			t,
			factory.RecordEvent("evt_3", "customer.subscription.deleted", payload).Execute(testContext()),
		)
		sub, err := factory.GetSubscription(user).Execute(testContext())
		require.NoError(t, err)
		assert.Equal(t, model.SubscriptionCanceled, sub.Status)
		assert.False(t, sub.IsActive())
	})
	t.Run("Should reject events without id or type", func(t *testing.T) {
		repo := newFakeRepo()
		factory := testFactory(repo, &fakeProvider{})
		err := factory.RecordEvent("", "", []byte(`{}`)).Execute(testContext())
		require.Error(t, err)
		assert.Equal(t, billing.ErrCodeInvalidEvent, core.ErrorCode(err, ""))
	})
}

func TestGetSubscription(t *testing.T) {
	t.Run("Should return NOT_FOUND code when user has no customer record", func(t *testing.T) {
		repo := newFakeRepo()
		factory := testFactory(repo, &fakeProvider{})
		_, err := factory.GetSubscription(caller()).Execute(testContext())
		require.Error(t, err)
		assert.Equal(t, billing.ErrCodeNotFound, core.ErrorCode(err, ""))
	})
}
