package router

import (
	"github.com/gin-gonic/gin"
	"github.com/substratehq/substrate/engine/assist/uc"
	"github.com/substratehq/substrate/engine/auth"
)

// RegisterRoutes registers all assist routes
func RegisterRoutes(apiBase *gin.RouterGroup, factory *uc.Factory, mw *auth.Middleware) {
	handler := NewHandler(factory)

	assistGroup := apiBase.Group("/assist")
	assistGroup.Use(mw.Authenticate())
	{
		assistGroup.POST("/completions", handler.Complete)
	}
}
