package router

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromCode(t *testing.T) {
	t.Run("Should map known codes to their statuses", func(t *testing.T) {
		testCases := []struct {
			code   string
			status int
		}{
			{ErrBadRequestCode, http.StatusBadRequest},
			{ErrUnauthorizedCode, http.StatusUnauthorized},
			{ErrPaymentRequiredCode, http.StatusPaymentRequired},
			{ErrForbiddenCode, http.StatusForbidden},
			{ErrNotFoundCode, http.StatusNotFound},
			{ErrConflictCode, http.StatusConflict},
			{ErrRateLimitedCode, http.StatusTooManyRequests},
			{ErrRequestTimeoutCode, http.StatusRequestTimeout},
			{ErrServiceUnavailableCode, http.StatusServiceUnavailable},
		}
		for _, tc := range testCases {
			assert.Equal(t, tc.status, StatusFromCode(tc.code), "code %s", tc.code)
		}
	})

	t.Run("Should default unknown codes to 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, StatusFromCode("SOMETHING_ELSE"))
		assert.Equal(t, http.StatusInternalServerError, StatusFromCode(ErrInternalCode))
	})
}

func TestCodeFromStatus(t *testing.T) {
	t.Run("Should round-trip with StatusFromCode for known statuses", func(t *testing.T) {
		for _, status := range []int{400, 401, 402, 403, 404, 408, 409, 429, 503} {
			code := CodeFromStatus(status)
			assert.Equal(t, status, StatusFromCode(code), "status %d", status)
		}
	})

	t.Run("Should default unknown statuses to internal", func(t *testing.T) {
		assert.Equal(t, ErrInternalCode, CodeFromStatus(http.StatusTeapot))
	})
}

func TestServerError(t *testing.T) {
	t.Run("Should format code and message", func(t *testing.T) {
		err := NewServerError(ErrBadRequestCode, "invalid payload")
		assert.Equal(t, "BAD_REQUEST: invalid payload", err.Error())
	})

	t.Run("Should include and unwrap the cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := WrapServerError(ErrInternalCode, "handler failed", cause)
		assert.Contains(t, err.Error(), "boom")
		assert.ErrorIs(t, err, cause)
	})
}
