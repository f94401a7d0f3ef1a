package resendapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/substratehq/substrate/engine/core"
)

func TestClient_Send(t *testing.T) {
	t.Run("Should post the message and return its ID", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/emails", r.URL.Path)
			assert.Equal(t, "Bearer re_test_key", r.Header.Get("Authorization"))
			var msg Message
			require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
			assert.Equal(t, "noreply@substrate.dev", msg.From)
			assert.Equal(t, []string{"ada@example.com"}, msg.To)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"email_123"}`)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "re_test_key")
		id, err := client.Send(context.Background(), &Message{
			From:    "noreply@substrate.dev",
			To:      []string{"ada@example.com"},
			Subject: "Welcome",
			Text:    "hello",
		})
		require.NoError(t, err)
		assert.Equal(t, "email_123", id)
	})
	t.Run("Should surface provider errors with the delivery failed code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"name":"validation_error","message":"Invalid to address"}`)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "re_test_key")
		_, err := client.Send(context.Background(), &Message{To: []string{"nope"}})
		require.Error(t, err)
		assert.Equal(t, ErrCodeDeliveryFailed, core.ErrorCode(err, ""))
		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, http.StatusUnprocessableEntity, coreErr.Details["status"])
		assert.Contains(t, coreErr.Error(), "Invalid to address")
	})
}

func TestRetryable(t *testing.T) {
	t.Run("Should retry server errors and rate limits", func(t *testing.T) {
		for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusTooManyRequests} {
			err := core.NewError(fmt.Errorf("provider responded %d", status),
				ErrCodeDeliveryFailed, map[string]any{"status": status})
			assert.True(t, Retryable(err), "status %d", status)
		}
	})
	t.Run("Should not retry client errors", func(t *testing.T) {
		err := core.NewError(fmt.Errorf("provider responded 422"),
			ErrCodeDeliveryFailed, map[string]any{"status": http.StatusUnprocessableEntity})
		assert.False(t, Retryable(err))
	})
	t.Run("Should retry transport failures", func(t *testing.T) {
		assert.True(t, Retryable(fmt.Errorf("dial tcp: connection refused")))
	})
}
