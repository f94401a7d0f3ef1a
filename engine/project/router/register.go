package router

import (
	"github.com/gin-gonic/gin"
	"github.com/substratehq/substrate/engine/auth"
	"github.com/substratehq/substrate/engine/project/uc"
)

// RegisterRoutes registers all project routes
func RegisterRoutes(apiBase *gin.RouterGroup, factory *uc.Factory, mw *auth.Middleware) {
	handler := NewHandler(factory)

	projects := apiBase.Group("/projects")
	projects.Use(mw.Authenticate())
	{
		projects.POST("", handler.Create)
		projects.GET("", handler.List)
		projects.GET("/:id", handler.Get)
		projects.PATCH("/:id", handler.Update)
		projects.DELETE("/:id", handler.Delete)
	}
}
