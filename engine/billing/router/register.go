package router

import (
	"github.com/gin-gonic/gin"
	"github.com/substratehq/substrate/engine/auth"
	"github.com/substratehq/substrate/engine/billing/uc"
	"github.com/substratehq/substrate/engine/billing/webhook"
)

// RegisterRoutes registers all billing routes. Webhook delivery is
// authenticated by signature, not by API key.
func RegisterRoutes(
	apiBase *gin.RouterGroup,
	factory *uc.Factory,
	verifier *webhook.Verifier,
	mw *auth.Middleware,
) {
	handler := NewHandler(factory, verifier)

	billingGroup := apiBase.Group("/billing")
	billingGroup.Use(mw.Authenticate())
	{
		billingGroup.POST("/checkout", handler.StartCheckout)
		billingGroup.GET("/subscription", handler.GetSubscription)
	}

	// No secret means no way to verify deliveries; leave the route off
	if verifier != nil {
		apiBase.POST("/webhooks/billing", handler.HandleWebhook)
	}
}
