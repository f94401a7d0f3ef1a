package mailer

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/mailer/resendapi"
	"github.com/substratehq/substrate/pkg/logger"
)

// fakeSender records sends and fails a configurable number of times
type fakeSender struct {
	failures int
	calls    int
	lastMsg  *resendapi.Message
	err      error
}

func (f *fakeSender) Send(_ context.Context, msg *resendapi.Message) (string, error) {
	f.calls++
	f.lastMsg = msg
	if f.calls <= f.failures {
		if f.err != nil {
			return "", f.err
		}
		return "", core.NewError(
			fmt.Errorf("server error"),
			resendapi.ErrCodeDeliveryFailed,
			map[string]any{"status": http.StatusInternalServerError},
		)
	}
	return "msg_1", nil
}

func testContext() context.Context {
	return logger.ContextWithLogger(context.Background(), logger.NewForTests())
}

func TestService_SendWelcome(t *testing.T) {
	t.Run("Should send welcome email with configured from address", func(t *testing.T) {
		sender := &fakeSender{}
		svc := NewService(sender, "noreply@substrate.dev")
		err := svc.SendWelcome(testContext(), "ada@example.com")
		require.NoError(t, err)
		require.NotNil(t, sender.lastMsg)
		assert.Equal(t, "noreply@substrate.dev", sender.lastMsg.From)
		assert.Equal(t, []string{"ada@example.com"}, sender.lastMsg.To)
		assert.NotEmpty(t, sender.lastMsg.Subject)
	})
	t.Run("Should retry transient provider failures", func(t *testing.T) {
		sender := &fakeSender{failures: 2}
		svc := NewService(sender, "noreply@substrate.dev")
		err := svc.SendWelcome(testContext(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, 3, sender.calls)
	})
	t.Run("Should not retry permanent failures", func(t *testing.T) {
		sender := &fakeSender{
			failures: 10,
			err: core.NewError(
				fmt.Errorf("invalid recipient"),
				resendapi.ErrCodeDeliveryFailed,
				map[string]any{"status": http.StatusUnprocessableEntity},
			),
		}
		svc := NewService(sender, "noreply@substrate.dev")
		err := svc.SendWelcome(testContext(), "bad@example.com")
		require.Error(t, err)
		assert.Equal(t, 1, sender.calls)
	})
	t.Run("Should give up after exhausting retries", func(t *testing.T) {
		sender := &fakeSender{failures: 10}
		svc := NewService(sender, "noreply@substrate.dev")
		err := svc.SendWelcome(testContext(), "ada@example.com")
		require.Error(t, err)
		assert.Equal(t, 4, sender.calls) // initial attempt plus three retries
	})
}

func TestService_SendSubscriptionConfirmation(t *testing.T) {
	t.Run("Should include plan name in the message", func(t *testing.T) {
		sender := &fakeSender{}
		svc := NewService(sender, "noreply@substrate.dev")
		err := svc.SendSubscriptionConfirmation(testContext(), "payer@example.com", "pro")
		require.NoError(t, err)
		assert.Contains(t, sender.lastMsg.Text, "pro")
	})
}
