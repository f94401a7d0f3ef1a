package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	r := gin.New()
	r.GET("/test", handler)
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	r.ServeHTTP(w, req)
	return w
}

func TestRespondOK(t *testing.T) {
	t.Run("Should wrap data in the standard envelope", func(t *testing.T) {
		w := performRequest(func(c *gin.Context) {
			RespondOK(c, "Success", gin.H{"name": "demo"})
		})

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "demo", data["name"])
		assert.Equal(t, "Success", body["message"])
	})
}

func TestRespondCreated(t *testing.T) {
	t.Run("Should return 201 with envelope", func(t *testing.T) {
		w := performRequest(func(c *gin.Context) {
			RespondCreated(c, "Created", gin.H{"id": "abc"})
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"abc"`)
	})
}

func TestRespondNoContent(t *testing.T) {
	t.Run("Should return 204 with empty body", func(t *testing.T) {
		w := performRequest(func(c *gin.Context) {
			RespondNoContent(c)
		})

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestRespondWithError(t *testing.T) {
	t.Run("Should render the error envelope", func(t *testing.T) {
		w := performRequest(func(c *gin.Context) {
			RespondWithError(c, http.StatusNotFound, ErrNotFoundCode, "workspace not found", nil)
		})

		require.Equal(t, http.StatusNotFound, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.Error)
		assert.Equal(t, ErrNotFoundCode, body.Error.Code)
		assert.Equal(t, "workspace not found", body.Error.Message)
		assert.Empty(t, body.Error.Details)
	})

	t.Run("Should include details from the cause", func(t *testing.T) {
		w := performRequest(func(c *gin.Context) {
			RespondWithServerError(c, ErrInternalCode, "query failed", assert.AnError)
		})

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.Error)
		assert.Equal(t, assert.AnError.Error(), body.Error.Details)
	})
}

func TestRespondWithCodedError(t *testing.T) {
	t.Run("Should derive the status from the code", func(t *testing.T) {
		w := performRequest(func(c *gin.Context) {
			RespondWithCodedError(c, ErrConflictCode, "already exists", nil)
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
