package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/substratehq/substrate/engine/mailer/resendapi"
	"github.com/substratehq/substrate/pkg/logger"
)

const (
	defaultRetryAttempts = 3
	retryBackoffBase     = 200 * time.Millisecond
	retryBackoffMax      = 5 * time.Second
)

// Sender is the delivery surface the service needs
type Sender interface {
	Send(ctx context.Context, msg *resendapi.Message) (string, error)
}

// Service sends transactional email with bounded retries. Delivery failures
// never fail the triggering operation; callers treat email as best effort.
type Service struct {
	sender   Sender
	from     string
	attempts uint64
}

// NewService creates a mailer service
func NewService(sender Sender, from string) *Service {
	return &Service{
		sender:   sender,
		from:     from,
		attempts: defaultRetryAttempts,
	}
}

// SendWelcome sends the onboarding email for a newly created account
func (s *Service) SendWelcome(ctx context.Context, to string) error {
	msg := &resendapi.Message{
		From:    s.from,
		To:      []string{to},
		Subject: "Welcome to Substrate",
		HTML: "<p>Your account is ready. Generate an API key from your dashboard " +
			"to start calling the API.</p>",
		Text: "Your account is ready. Generate an API key from your dashboard to start calling the API.",
	}
	return s.send(ctx, "welcome", msg)
}

// SendSubscriptionConfirmation notifies a customer their subscription is live
func (s *Service) SendSubscriptionConfirmation(ctx context.Context, to, plan string) error {
	msg := &resendapi.Message{
		From:    s.from,
		To:      []string{to},
		Subject: "Your subscription is active",
		HTML:    fmt.Sprintf("<p>Your subscription to the %s plan is now active.</p>", plan),
		Text:    fmt.Sprintf("Your subscription to the %s plan is now active.", plan),
	}
	return s.send(ctx, "subscription_confirmation", msg)
}

func (s *Service) send(ctx context.Context, kind string, msg *resendapi.Message) error {
	log := logger.FromContext(ctx)

	backoff := retry.WithMaxRetries(
		s.attempts,
		retry.WithMaxDuration(retryBackoffMax, retry.NewExponential(retryBackoffBase)),
	)
	var messageID string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var sendErr error
		messageID, sendErr = s.sender.Send(ctx, msg)
		if sendErr != nil {
			if resendapi.Retryable(sendErr) {
				return retry.RetryableError(sendErr)
			}
			return sendErr
		}
		return nil
	})
	if err != nil {
		log.Error("Email delivery failed", "kind", kind, "to", msg.To, "error", err)
		return fmt.Errorf("delivering %s email: %w", kind, err)
	}
	log.Info("Email delivered", "kind", kind, "to", msg.To, "message_id", messageID)
	return nil
}
