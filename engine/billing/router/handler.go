package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/substratehq/substrate/engine/auth"
	authmodel "github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/billing"
	"github.com/substratehq/substrate/engine/billing/uc"
	"github.com/substratehq/substrate/engine/billing/webhook"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/infra/server/router"
	"github.com/substratehq/substrate/pkg/logger"
)

// maxWebhookBody bounds webhook payload reads
const maxWebhookBody = 1 << 20

// CheckoutRequest is the payload for starting a checkout session
type CheckoutRequest struct {
	PriceID string `json:"price_id" binding:"required"`
}

// eventEnvelope is the provider webhook envelope subset we route on
type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Handler handles billing-related HTTP requests
type Handler struct {
	factory  *uc.Factory
	verifier *webhook.Verifier
}

// NewHandler creates a new billing handler
func NewHandler(factory *uc.Factory, verifier *webhook.Verifier) *Handler {
	return &Handler{
		factory:  factory,
		verifier: verifier,
	}
}

func (h *Handler) callerFromRequest(c *gin.Context) (*authmodel.User, bool) {
	caller, ok := auth.UserFromContext(c.Request.Context())
	if !ok {
		router.RespondWithCodedError(c, router.ErrUnauthorizedCode, "Authentication required", nil)
		return nil, false
	}
	return caller, true
}

// handleDomainError maps domain errors onto the coded error envelope
func (h *Handler) handleDomainError(ctx context.Context, c *gin.Context, action string, err error) {
	log := logger.FromContext(ctx)
	log.Error("Billing request failed", "action", action, "error", err)
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		switch coreErr.Code {
		case billing.ErrCodeNotFound:
			router.RespondWithCodedError(c, router.ErrNotFoundCode, "No subscription found", nil)
			return
		case billing.ErrCodePaymentRequired:
			router.RespondWithCodedError(c, router.ErrPaymentRequiredCode, coreErr.Message, nil)
			return
		case billing.ErrCodeProviderError, billing.ErrCodeProviderThrottle:
			router.RespondWithCodedError(c, router.ErrServiceUnavailableCode, "Payment provider unavailable", coreErr)
			return
		case billing.ErrCodeProviderAuth:
			// Misconfigured provider credentials are our fault, not the caller's
			router.RespondWithCodedError(c, router.ErrServiceUnavailableCode, "Payment provider unavailable", nil)
			return
		case billing.ErrCodeInvalidEvent:
			router.RespondWithCodedError(c, router.ErrBadRequestCode, coreErr.Message, coreErr)
			return
		}
	}
	router.RespondWithServerError(c, router.ErrInternalCode, "Failed to "+action, err)
}

// StartCheckout creates a hosted checkout session and returns its URL
func (h *Handler) StartCheckout(c *gin.Context) {
	ctx := c.Request.Context()
	caller, ok := h.callerFromRequest(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithCodedError(c, router.ErrBadRequestCode, "Invalid request body", err)
		return
	}
	checkoutURL, err := h.factory.StartCheckout(caller, req.PriceID).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "start checkout", err)
		return
	}
	router.RespondCreated(c, "Checkout session created", gin.H{"checkout_url": checkoutURL})
}

// GetSubscription returns the caller's current subscription
func (h *Handler) GetSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	caller, ok := h.callerFromRequest(c)
	if !ok {
		return
	}
	sub, err := h.factory.GetSubscription(caller).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "get subscription", err)
		return
	}
	router.RespondOK(c, "Success", sub)
}

// HandleWebhook verifies and records a provider webhook event. Replayed
// events are acknowledged without being re-applied.
func (h *Handler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		router.RespondWithCodedError(c, router.ErrBadRequestCode, "Failed to read request body", err)
		return
	}
	if err := h.verifier.Verify(c.Request, body); err != nil {
		log.Warn("Webhook signature rejected", "error", err)
		router.RespondWithCodedError(c, router.ErrUnauthorizedCode, "Invalid webhook signature", nil)
		return
	}
	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		router.RespondWithCodedError(c, router.ErrBadRequestCode, "Invalid event payload", err)
		return
	}
	if err := h.factory.RecordEvent(envelope.ID, envelope.Type, body).Execute(ctx); err != nil {
		if errors.Is(err, uc.ErrEventExists) {
			router.RespondOK(c, "Event already processed", nil)
			return
		}
		h.handleDomainError(ctx, c, "process webhook event", err)
		return
	}
	router.RespondOK(c, "Event processed", nil)
}
