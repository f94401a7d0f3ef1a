package stripeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/substratehq/substrate/engine/billing"
	"github.com/substratehq/substrate/engine/core"
)

func TestClient_CreateCustomer(t *testing.T) {
	t.Run("Should send email form field with bearer auth", func(t *testing.T) {
		var gotAuth, gotEmail string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/customers", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, r.ParseForm())
			gotEmail = r.PostForm.Get("email")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"cus_123","email":"ada@example.com"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "sk_test_abc")
		customer, err := client.CreateCustomer(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "cus_123", customer.ID)
		assert.Equal(t, "Bearer sk_test_abc", gotAuth)
		assert.Equal(t, "ada@example.com", gotEmail)
	})
	t.Run("Should map provider errors onto coded errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "sk_test_abc")
		_, err := client.CreateCustomer(context.Background(), "ada@example.com")
		require.Error(t, err)
		assert.Equal(t, billing.ErrCodePaymentRequired, core.ErrorCode(err, ""))
	})
	t.Run("Should map auth failures to UNAUTHORIZED", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid API Key provided"}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "sk_test_abc")
		_, err := client.CreateCustomer(context.Background(), "ada@example.com")
		require.Error(t, err)
		assert.Equal(t, billing.ErrCodeProviderAuth, core.ErrorCode(err, ""))
	})
}

func TestClient_CreateCheckoutSession(t *testing.T) {
	t.Run("Should create subscription-mode session", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "subscription", r.PostForm.Get("mode"))
			assert.Equal(t, "cus_123", r.PostForm.Get("customer"))
			assert.Equal(t, "price_pro", r.PostForm.Get("line_items[0][price]"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"cs_1","url":"https://checkout.example/cs_1","customer":"cus_123","status":"open"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "sk_test_abc")
		session, err := client.CreateCheckoutSession(
			context.Background(),
			"cus_123",
			"price_pro",
			"https://app.example/success",
			"https://app.example/cancel",
		)
		require.NoError(t, err)
		assert.Equal(t, "https://checkout.example/cs_1", session.URL)
	})
	t.Run("Should return PROVIDER_ERROR for non-payment failures", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such price"}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "sk_test_abc")
		_, err := client.CreateCheckoutSession(context.Background(), "cus_123", "bad", "s", "c")
		require.Error(t, err)
		assert.Equal(t, billing.ErrCodeProviderError, core.ErrorCode(err, ""))
	})
	t.Run("Should map rate limits to RESOURCE_EXHAUSTED after retries", func(t *testing.T) {
		var hits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"Too many requests"}}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "sk_test_abc")
		_, err := client.CreateCheckoutSession(context.Background(), "cus_123", "price_pro", "s", "c")
		require.Error(t, err)
		assert.Equal(t, billing.ErrCodeProviderThrottle, core.ErrorCode(err, ""))
		assert.Equal(t, 4, hits)
	})
}
