package stripeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/substratehq/substrate/engine/billing"
	"github.com/substratehq/substrate/engine/core"
)

// Customer is the subset of the provider customer object we consume
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CheckoutSession is the subset of the provider checkout session we consume
type CheckoutSession struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Customer string `json:"customer"`
	Status   string `json:"status"`
}

// apiError is the provider's error envelope
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is a thin Stripe API client. Only the operations the billing domain
// needs are exposed; everything else stays behind the provider's dashboard.
type Client struct {
	http *resty.Client
}

// NewClient creates a Stripe API client
func NewClient(baseURL, apiKey string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetAuthToken(apiKey).
		SetRetryCount(3).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(retryCondition)
	return &Client{http: client}
}

// retryCondition determines if a request should be retried
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests
}

// CreateCustomer creates a provider customer for the given email
func (c *Client) CreateCustomer(ctx context.Context, email string) (*Customer, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"email": email}).
		Post("/v1/customers")
	if err != nil {
		return nil, fmt.Errorf("creating provider customer: %w", err)
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	var customer Customer
	if err := json.Unmarshal(resp.Body(), &customer); err != nil {
		return nil, fmt.Errorf("decoding provider customer: %w", err)
	}
	return &customer, nil
}

// CreateCheckoutSession creates a hosted checkout session for a subscription
func (c *Client) CreateCheckoutSession(
	ctx context.Context,
	customerID string,
	priceID string,
	successURL string,
	cancelURL string,
) (*CheckoutSession, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"customer":                customerID,
			"mode":                    "subscription",
			"line_items[0][price]":    priceID,
			"line_items[0][quantity]": "1",
			"success_url":             successURL,
			"cancel_url":              cancelURL,
		}).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}
	if resp.IsError() {
		return nil, decodeError(resp)
	}
	var session CheckoutSession
	if err := json.Unmarshal(resp.Body(), &session); err != nil {
		return nil, fmt.Errorf("decoding checkout session: %w", err)
	}
	return &session, nil
}

// decodeError maps a provider error response onto a coded domain error
func decodeError(resp *resty.Response) error {
	var envelope apiError
	message := "provider request failed"
	if err := json.Unmarshal(resp.Body(), &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}
	code := billing.ErrCodeProviderError
	switch {
	case resp.StatusCode() == http.StatusPaymentRequired || envelope.Error.Code == "card_declined":
		code = billing.ErrCodePaymentRequired
	case resp.StatusCode() == http.StatusTooManyRequests:
		code = billing.ErrCodeProviderThrottle
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		code = billing.ErrCodeProviderAuth
	}
	return core.NewError(
		fmt.Errorf("provider responded %d: %s", resp.StatusCode(), message),
		code,
		map[string]any{
			"status":        resp.StatusCode(),
			"provider_code": envelope.Error.Code,
		},
	)
}
