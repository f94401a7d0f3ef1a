package resendapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/substratehq/substrate/engine/core"
)

// ErrCodeDeliveryFailed is attached to errors from the email provider
const ErrCodeDeliveryFailed = "EMAIL_DELIVERY_FAILED"

// Message is an outbound transactional email
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// SendResponse is the provider's acknowledgment of an accepted message
type SendResponse struct {
	ID string `json:"id"`
}

// apiError is the provider's error envelope
type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Client is a thin Resend API client
type Client struct {
	http *resty.Client
}

// NewClient creates a Resend API client
func NewClient(baseURL, apiKey string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)
	return &Client{http: client}
}

// Send submits a message for delivery and returns the provider message ID
func (c *Client) Send(ctx context.Context, msg *Message) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(msg).
		Post("/emails")
	if err != nil {
		return "", fmt.Errorf("sending email: %w", err)
	}
	if resp.IsError() {
		var envelope apiError
		message := "email provider request failed"
		if err := json.Unmarshal(resp.Body(), &envelope); err == nil && envelope.Message != "" {
			message = envelope.Message
		}
		return "", core.NewError(
			fmt.Errorf("provider responded %d: %s", resp.StatusCode(), message),
			ErrCodeDeliveryFailed,
			map[string]any{"status": resp.StatusCode()},
		)
	}
	var sendResp SendResponse
	if err := json.Unmarshal(resp.Body(), &sendResp); err != nil {
		return "", fmt.Errorf("decoding send response: %w", err)
	}
	return sendResp.ID, nil
}

// Retryable reports whether a provider failure is worth retrying
func Retryable(err error) bool {
	var coreErr *core.Error
	if !errors.As(err, &coreErr) {
		// Network-level failures are retryable
		return true
	}
	status, ok := coreErr.Details["status"].(int)
	if !ok {
		return false
	}
	return status >= 500 || status == http.StatusTooManyRequests
}
