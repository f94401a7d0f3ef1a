package router

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/substratehq/substrate/engine/assist"
	assistadapter "github.com/substratehq/substrate/engine/assist/adapter"
	"github.com/substratehq/substrate/engine/assist/uc"
	"github.com/substratehq/substrate/engine/auth"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/infra/server/router"
	"github.com/substratehq/substrate/pkg/logger"
)

// Handler handles assist HTTP requests
type Handler struct {
	factory *uc.Factory
}

// NewHandler creates a new assist handler
func NewHandler(factory *uc.Factory) *Handler {
	return &Handler{factory: factory}
}

// handleDomainError maps validation and provider errors onto the coded
// error envelope. Provider failures never expose upstream messages.
func (h *Handler) handleDomainError(ctx context.Context, c *gin.Context, err error) {
	log := logger.FromContext(ctx)
	log.Error("Completion request failed", "error", err)
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		switch coreErr.Code {
		case assist.ErrCodeInvalidPrompt, assist.ErrCodeInvalidMessage, assist.ErrCodePromptTooLong:
			router.RespondWithCodedError(c, router.ErrBadRequestCode, coreErr.Message, coreErr)
			return
		case assistadapter.ErrCodeRateLimited:
			router.RespondWithCodedError(c, router.ErrRateLimitedCode, "Completion provider is rate limiting requests", nil)
			return
		case assistadapter.ErrCodeTimeout:
			router.RespondWithCodedError(c, router.ErrRequestTimeoutCode, "Completion provider timed out", nil)
			return
		case assistadapter.ErrCodeUnavailable, assistadapter.ErrCodeAuth, assistadapter.ErrCodeProvider:
			router.RespondWithCodedError(c, router.ErrServiceUnavailableCode, "Completion provider unavailable", nil)
			return
		}
	}
	router.RespondWithServerError(c, router.ErrInternalCode, "Failed to generate completion", err)
}

// Complete generates a chat completion for the authenticated caller
func (h *Handler) Complete(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		router.RespondWithCodedError(c, router.ErrUnauthorizedCode, "Authentication required", nil)
		return
	}
	var input uc.CompleteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		router.RespondWithCodedError(c, router.ErrBadRequestCode, "Invalid request body", err)
		return
	}
	out, err := h.factory.Complete(userID, &input).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, err)
		return
	}
	router.RespondOK(c, "Success", out)
}
