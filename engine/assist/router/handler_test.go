package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	assistadapter "github.com/substratehq/substrate/engine/assist/adapter"
	assistrouter "github.com/substratehq/substrate/engine/assist/router"
	"github.com/substratehq/substrate/engine/assist/uc"
	"github.com/substratehq/substrate/engine/auth"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/pkg/logger"
)

type stubClient struct {
	resp *assistadapter.Response
	err  error
}

func (s *stubClient) GenerateContent(_ context.Context, _ *assistadapter.Request) (*assistadapter.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

// setupTestRouter wires the handler behind a stub that injects the caller
// identity the way the auth middleware would.
func setupTestRouter(client assistadapter.Client, authed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		ctx := logger.ContextWithLogger(c.Request.Context(), logger.NewForTests())
		if authed {
			ctx = auth.WithUserID(ctx, core.MustNewID())
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	handler := assistrouter.NewHandler(uc.NewFactory(client, uc.Defaults{}))
	engine.POST("/api/v1/assist/completions", handler.Complete)
	return engine
}

func postCompletion(engine *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assist/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestHandler_Complete(t *testing.T) {
	validBody := `{"messages":[{"role":"user","content":"Say hello"}]}`

	t.Run("Should return the completion in the data envelope", func(t *testing.T) {
		client := &stubClient{resp: &assistadapter.Response{Content: "Hello", Model: "gpt-4o-mini"}}
		w := postCompletion(setupTestRouter(client, true), validBody)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data uc.CompleteOutput `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Hello", resp.Data.Content)
		assert.Equal(t, "gpt-4o-mini", resp.Data.Model)
	})
	t.Run("Should reject unauthenticated requests", func(t *testing.T) {
		w := postCompletion(setupTestRouter(&stubClient{}, false), validBody)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
	t.Run("Should return a coded error for an empty conversation", func(t *testing.T) {
		w := postCompletion(setupTestRouter(&stubClient{}, true), `{"messages":[]}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "BAD_REQUEST", resp.Error.Code)
	})
	t.Run("Should map provider rate limiting to 429", func(t *testing.T) {
		client := &stubClient{
			err: assistadapter.ParseProviderError("openai", fmt.Errorf("rate limit exceeded")),
		}
		w := postCompletion(setupTestRouter(client, true), validBody)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
	t.Run("Should map provider outages to 503 without leaking detail", func(t *testing.T) {
		client := &stubClient{
			err: assistadapter.ParseProviderError("openai", fmt.Errorf("the engine is currently overloaded")),
		}
		w := postCompletion(setupTestRouter(client, true), validBody)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "overloaded")
	})
}
