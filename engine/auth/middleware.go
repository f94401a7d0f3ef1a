package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/auth/ratelimit"
	"github.com/substratehq/substrate/engine/auth/uc"
	"github.com/substratehq/substrate/engine/infra/server/router"
	"github.com/substratehq/substrate/pkg/logger"
)

// Middleware handles API key authentication for all protected routes
type Middleware struct {
	factory *uc.Factory
	limiter *ratelimit.Service
}

// NewMiddleware creates a new authentication middleware instance.
// limiter may be nil to disable per-key rate limiting.
func NewMiddleware(factory *uc.Factory, limiter *ratelimit.Service) *Middleware {
	return &Middleware{
		factory: factory,
		limiter: limiter,
	}
}

// Authenticate is the Gin middleware handler for API key authentication
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Debug("Missing Authorization header")
			router.RespondWithCodedError(c, router.ErrUnauthorizedCode, "Missing Authorization header", nil)
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			log.Debug("Invalid Authorization header format")
			router.RespondWithCodedError(
				c,
				router.ErrUnauthorizedCode,
				"Invalid Authorization header format. Expected: Bearer <token>",
				nil,
			)
			return
		}
		plaintext := strings.TrimSpace(parts[1])
		usr, key, err := m.factory.ValidateAPIKey(plaintext).Execute(c.Request.Context())
		if err != nil {
			// Log the actual error for debugging but return a generic message to the client
			log.With("error", err).Debug("API key validation failed")
			if errors.Is(err, uc.ErrInvalidAPIKey) {
				router.RespondWithCodedError(c, router.ErrUnauthorizedCode, "Invalid API key", nil)
			} else {
				router.RespondWithCodedError(
					c,
					router.ErrInternalCode,
					"Authentication service unavailable",
					err,
				)
			}
			return
		}
		if usr.Status != model.StatusActive {
			log.With("user_id", usr.ID, "status", usr.Status).Debug("User account not active")
			router.RespondWithCodedError(c, router.ErrForbiddenCode, "User account is not active", nil)
			return
		}
		if m.limiter != nil {
			if err := m.limiter.CheckRateLimit(c.Request.Context(), key.ID, nil); err != nil {
				log.With("api_key_id", key.ID).Debug("Rate limit exceeded")
				router.RespondWithCodedError(c, router.ErrRateLimitedCode, "Rate limit exceeded", nil)
				return
			}
		}
		ctx := WithUser(c.Request.Context(), usr)
		ctx = WithUserID(ctx, usr.ID)
		ctx = WithAPIKey(ctx, key)
		c.Request = c.Request.WithContext(ctx)
		log.With(
			"user_id", usr.ID,
			"api_key_id", key.ID,
			"user_role", usr.Role,
		).Debug("Request authenticated successfully")
		c.Next()
	}
}

// RequireAdmin rejects requests from non-admin users. Must run after Authenticate.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		usr, ok := UserFromContext(c.Request.Context())
		if !ok {
			router.RespondWithCodedError(c, router.ErrUnauthorizedCode, "Authentication required", nil)
			return
		}
		if !usr.IsAdmin() {
			router.RespondWithCodedError(c, router.ErrForbiddenCode, "Admin role required", nil)
			return
		}
		c.Next()
	}
}

// GetUser retrieves the authenticated user from the gin context
func GetUser(c *gin.Context) (*model.User, bool) {
	return UserFromContext(c.Request.Context())
}

// GetAPIKey retrieves the authenticated API key from the gin context
func GetAPIKey(c *gin.Context) (*model.APIKey, bool) {
	return APIKeyFromContext(c.Request.Context())
}
