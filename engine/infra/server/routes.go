package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	assistrouter "github.com/substratehq/substrate/engine/assist/router"
	"github.com/substratehq/substrate/engine/auth"
	authrouter "github.com/substratehq/substrate/engine/auth/router"
	billingrouter "github.com/substratehq/substrate/engine/billing/router"
	projectrouter "github.com/substratehq/substrate/engine/project/router"
	"github.com/substratehq/substrate/pkg/config"
	"github.com/substratehq/substrate/pkg/logger"
	"github.com/substratehq/substrate/pkg/version"
)

// APIBasePath prefixes every versioned route
const APIBasePath = "/api/v1"

// buildRouter assembles the gin engine with all domain routes mounted
func buildRouter(cfg *config.Config, log logger.Logger, deps *dependencies) *gin.Engine {
	if cfg.Runtime.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(log))
	if cfg.Server.CORSEnabled {
		engine.Use(CORSMiddleware())
	}

	engine.GET("/healthz", healthHandler(deps))

	mw := auth.NewMiddleware(deps.authFactory, deps.limiter)
	apiBase := engine.Group(APIBasePath)
	authrouter.RegisterRoutes(apiBase, deps.authFactory, mw)
	projectrouter.RegisterRoutes(apiBase, deps.projectFactory, mw)
	billingrouter.RegisterRoutes(apiBase, deps.billingFactory, deps.verifier, mw)
	assistrouter.RegisterRoutes(apiBase, deps.assistFactory, mw)

	return engine
}

// healthHandler reports storage health so load balancers can rotate the
// instance out before requests start failing.
func healthHandler(deps *dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		status := http.StatusOK
		checks := gin.H{"postgres": "ok"}
		if err := deps.store.HealthCheck(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["postgres"] = err.Error()
		}
		if deps.redis != nil {
			checks["redis"] = "ok"
			if err := deps.redis.HealthCheck(ctx); err != nil {
				checks["redis"] = err.Error()
			}
		}
		c.JSON(status, gin.H{
			"status":  statusLabel(status),
			"version": version.Version,
			"checks":  checks,
		})
	}
}

func statusLabel(status int) string {
	if status == http.StatusOK {
		return "healthy"
	}
	return "degraded"
}
