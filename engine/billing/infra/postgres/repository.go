package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/substratehq/substrate/engine/billing/model"
	"github.com/substratehq/substrate/engine/billing/uc"
	"github.com/substratehq/substrate/engine/core"
)

var customerColumns = []string{"id", "user_id", "provider_customer_id", "created_at", "updated_at"}

var subscriptionColumns = []string{
	"id", "customer_id", "provider_subscription_id", "plan", "status",
	"amount", "currency", "current_period_end", "created_at", "updated_at",
}

var eventColumns = []string{"id", "provider_event_id", "type", "payload", "received_at", "processed_at"}

const uniqueViolation = "23505"

// Repository implements the billing repository interface using PostgreSQL
type Repository struct {
	db DBInterface
}

// DBInterface defines the minimal interface needed by the repository
type DBInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewRepository creates a new billing repository
func NewRepository(db DBInterface) uc.Repository {
	return &Repository{db: db}
}

// CreateCustomer inserts a new billing customer
func (r *Repository) CreateCustomer(ctx context.Context, customer *model.Customer) error {
	query, args, err := squirrel.Insert("billing_customers").
		Columns(customerColumns...).
		Values(
			customer.ID,
			customer.UserID,
			customer.ProviderCustomerID,
			customer.CreatedAt,
			customer.UpdatedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting billing customer: %w", err)
	}
	return nil
}

// GetCustomerByUserID retrieves a billing customer by user ID
func (r *Repository) GetCustomerByUserID(ctx context.Context, userID core.ID) (*model.Customer, error) {
	query, args, err := squirrel.Select(customerColumns...).
		From("billing_customers").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var customer model.Customer
	if err := pgxscan.Get(ctx, r.db, &customer, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("scanning billing customer: %w", err)
	}
	return &customer, nil
}

// GetCustomerByProviderID retrieves a billing customer by provider customer ID
func (r *Repository) GetCustomerByProviderID(
	ctx context.Context,
	providerCustomerID string,
) (*model.Customer, error) {
	query, args, err := squirrel.Select(customerColumns...).
		From("billing_customers").
		Where(squirrel.Eq{"provider_customer_id": providerCustomerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var customer model.Customer
	if err := pgxscan.Get(ctx, r.db, &customer, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("scanning billing customer: %w", err)
	}
	return &customer, nil
}

// UpsertSubscription inserts or refreshes the local mirror of a provider
// subscription, keyed by the provider subscription ID.
func (r *Repository) UpsertSubscription(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions
			(id, customer_id, provider_subscription_id, plan, status,
			 amount, currency, current_period_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (provider_subscription_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		sub.ID,
		sub.CustomerID,
		sub.ProviderSubscriptionID,
		sub.Plan,
		sub.Status,
		sub.Amount,
		sub.Currency,
		sub.CurrentPeriodEnd,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting subscription: %w", err)
	}
	return nil
}

// GetSubscriptionByCustomerID retrieves the newest subscription for a customer
func (r *Repository) GetSubscriptionByCustomerID(
	ctx context.Context,
	customerID core.ID,
) (*model.Subscription, error) {
	query, args, err := squirrel.Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var sub model.Subscription
	if err := pgxscan.Get(ctx, r.db, &sub, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("scanning subscription: %w", err)
	}
	return &sub, nil
}

// RecordEvent inserts a webhook event; duplicate provider event IDs surface
// as uc.ErrEventExists so callers can acknowledge replays.
func (r *Repository) RecordEvent(ctx context.Context, event *model.Event) error {
	query, args, err := squirrel.Insert("billing_events").
		Columns("id", "provider_event_id", "type", "payload", "received_at").
		Values(event.ID, event.ProviderEventID, event.Type, event.Payload, event.ReceivedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uc.ErrEventExists
		}
		return fmt.Errorf("inserting billing event: %w", err)
	}
	return nil
}

// GetEventByProviderID retrieves a recorded webhook event by provider event ID
func (r *Repository) GetEventByProviderID(
	ctx context.Context,
	providerEventID string,
) (*model.Event, error) {
	query, args, err := squirrel.Select(eventColumns...).
		From("billing_events").
		Where(squirrel.Eq{"provider_event_id": providerEventID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var event model.Event
	if err := pgxscan.Get(ctx, r.db, &event, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrEventNotFound
		}
		return nil, fmt.Errorf("scanning billing event: %w", err)
	}
	return &event, nil
}

// MarkEventProcessed stamps a recorded event as applied
func (r *Repository) MarkEventProcessed(ctx context.Context, eventID core.ID, processedAt time.Time) error {
	query, args, err := squirrel.Update("billing_events").
		Set("processed_at", processedAt).
		Where(squirrel.Eq{"id": eventID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("marking billing event processed: %w", err)
	}
	return nil
}
