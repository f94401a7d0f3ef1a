package stripeapi

import "context"

// Adapter exposes the Client through the billing use case provider surface
type Adapter struct {
	client *Client
}

// NewAdapter creates a provider adapter around a Client
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// CreateCustomer creates a provider customer and returns its ID
func (a *Adapter) CreateCustomer(ctx context.Context, email string) (string, error) {
	customer, err := a.client.CreateCustomer(ctx, email)
	if err != nil {
		return "", err
	}
	return customer.ID, nil
}

// CreateCheckoutSession creates a checkout session and returns its URL
func (a *Adapter) CreateCheckoutSession(
	ctx context.Context,
	providerCustomerID string,
	priceID string,
	successURL string,
	cancelURL string,
) (string, error) {
	session, err := a.client.CreateCheckoutSession(ctx, providerCustomerID, priceID, successURL, cancelURL)
	if err != nil {
		return "", err
	}
	return session.URL, nil
}
