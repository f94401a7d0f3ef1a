package router

import (
	"github.com/gin-gonic/gin"
	"github.com/substratehq/substrate/engine/auth"
	"github.com/substratehq/substrate/engine/auth/uc"
)

// RegisterRoutes registers all auth routes
func RegisterRoutes(apiBase *gin.RouterGroup, factory *uc.Factory, mw *auth.Middleware) {
	handler := NewHandler(factory)

	// Key management for the authenticated user
	keys := apiBase.Group("/auth")
	{
		keys.Use(mw.Authenticate())
		keys.POST("/keys", handler.GenerateKey)
		keys.GET("/keys", handler.ListKeys)
		keys.DELETE("/keys/:id", handler.RevokeKey)
	}

	// Admin endpoints for user management
	admin := apiBase.Group("/users")
	admin.Use(mw.Authenticate())
	admin.Use(mw.RequireAdmin())
	{
		admin.GET("", handler.ListUsers)
		admin.POST("", handler.CreateUser)
		admin.GET("/:id", handler.GetUser)
		admin.PATCH("/:id", handler.UpdateUser)
		admin.DELETE("/:id", handler.DeleteUser)
	}
}
