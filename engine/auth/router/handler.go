package router

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/substratehq/substrate/engine/auth"
	"github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/auth/uc"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/infra/server/router"
	"github.com/substratehq/substrate/pkg/logger"
)

// CreateUserRequest is the payload for creating a user
type CreateUserRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role"`
}

// UpdateUserRequest is the payload for updating a user
type UpdateUserRequest struct {
	Email  *string `json:"email,omitempty"`
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

// APIKeyMetadataResponse is an API key stripped of secret material
type APIKeyMetadataResponse struct {
	ID        string     `json:"id"`
	Prefix    string     `json:"prefix"`
	CreatedAt time.Time  `json:"created_at"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// Handler handles auth-related HTTP requests
type Handler struct {
	factory *uc.Factory
}

// NewHandler creates a new auth handler
func NewHandler(factory *uc.Factory) *Handler {
	return &Handler{
		factory: factory,
	}
}

// userIDFromRequest extracts the authenticated user's ID set by the middleware
func (h *Handler) userIDFromRequest(c *gin.Context) (core.ID, bool) {
	userID, ok := auth.UserIDFromContext(c.Request.Context())
	if !ok {
		router.RespondWithCodedError(c, router.ErrUnauthorizedCode, "Authentication required", nil)
		return "", false
	}
	return userID, true
}

// parseIDParam extracts a path parameter and parses it as a core.ID
func (h *Handler) parseIDParam(c *gin.Context, param string, invalidMessage string) (core.ID, bool) {
	id, err := core.ParseID(c.Param(param))
	if err != nil {
		router.RespondWithCodedError(c, router.ErrBadRequestCode, invalidMessage, err)
		return "", false
	}
	return id, true
}

// parseRole converts a string into a valid model.Role
func parseRole(role string) (model.Role, bool) {
	switch role {
	case string(model.RoleAdmin):
		return model.RoleAdmin, true
	case string(model.RoleMember):
		return model.RoleMember, true
	default:
		return "", false
	}
}

func (h *Handler) buildCreateUserInput(c *gin.Context) (*uc.CreateUserInput, bool) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithCodedError(c, router.ErrBadRequestCode, "Invalid request body", err)
		return nil, false
	}
	role := model.RoleMember
	if req.Role != "" {
		parsedRole, ok := parseRole(req.Role)
		if !ok {
			router.RespondWithCodedError(
				c,
				router.ErrBadRequestCode,
				"Role must be 'admin' or 'member'",
				nil,
			)
			return nil, false
		}
		role = parsedRole
	}
	return &uc.CreateUserInput{
		Email: req.Email,
		Role:  role,
	}, true
}

func (h *Handler) buildUpdateUserInput(c *gin.Context) (*uc.UpdateUserInput, bool) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithCodedError(c, router.ErrBadRequestCode, "Invalid request body", err)
		return nil, false
	}
	input := &uc.UpdateUserInput{Email: req.Email}
	if req.Role != nil {
		parsedRole, ok := parseRole(*req.Role)
		if !ok {
			router.RespondWithCodedError(
				c,
				router.ErrBadRequestCode,
				"Role must be 'admin' or 'member'",
				nil,
			)
			return nil, false
		}
		input.Role = &parsedRole
	}
	if req.Status != nil {
		status := model.Status(*req.Status)
		if !status.Valid() {
			router.RespondWithCodedError(
				c,
				router.ErrBadRequestCode,
				"Status must be 'active' or 'suspended'",
				nil,
			)
			return nil, false
		}
		input.Status = &status
	}
	return input, true
}

// handleDomainError maps domain errors onto the coded error envelope
func (h *Handler) handleDomainError(ctx context.Context, c *gin.Context, action string, err error) {
	log := logger.FromContext(ctx)
	log.Error("Auth request failed", "action", action, "error", err)
	switch {
	case errors.Is(err, uc.ErrUserNotFound):
		router.RespondWithCodedError(c, router.ErrNotFoundCode, "User not found", nil)
	case errors.Is(err, uc.ErrAPIKeyNotFound):
		router.RespondWithCodedError(c, router.ErrNotFoundCode, "API key not found", nil)
	case errors.Is(err, uc.ErrEmailExists):
		router.RespondWithCodedError(c, router.ErrConflictCode, "A user with this email already exists", nil)
	default:
		var coreErr *core.Error
		if errors.As(err, &coreErr) {
			switch coreErr.Code {
			case model.ErrCodeInvalidEmail, model.ErrCodeInvalidRole:
				router.RespondWithCodedError(c, router.ErrBadRequestCode, coreErr.Message, coreErr)
				return
			case model.ErrCodeForbidden:
				router.RespondWithCodedError(c, router.ErrForbiddenCode, "Access denied", nil)
				return
			case model.ErrCodeNotFound:
				router.RespondWithCodedError(c, router.ErrNotFoundCode, "Resource not found", nil)
				return
			}
		}
		router.RespondWithServerError(c, router.ErrInternalCode, "Failed to "+action, err)
	}
}

// GenerateKey creates a new API key for the authenticated user. The plaintext
// key is returned exactly once and never stored.
func (h *Handler) GenerateKey(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := h.userIDFromRequest(c)
	if !ok {
		return
	}
	plaintext, err := h.factory.GenerateAPIKey(userID).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "generate API key", err)
		return
	}
	router.RespondCreated(c, "API key generated successfully", gin.H{"api_key": plaintext})
}

// ListKeys lists the authenticated user's API keys without secret material
func (h *Handler) ListKeys(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := h.userIDFromRequest(c)
	if !ok {
		return
	}
	keys, err := h.factory.ListAPIKeys(userID).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "list API keys", err)
		return
	}
	// Hashed key material never leaves the service
	masked := make([]APIKeyMetadataResponse, len(keys))
	for i, key := range keys {
		metadata := APIKeyMetadataResponse{
			ID:        key.ID.String(),
			Prefix:    key.Prefix,
			CreatedAt: key.CreatedAt,
		}
		if key.LastUsed.Valid {
			metadata.LastUsed = &key.LastUsed.Time
		}
		masked[i] = metadata
	}
	router.RespondOK(c, "Success", gin.H{"keys": masked})
}

// RevokeKey revokes one of the authenticated user's API keys
func (h *Handler) RevokeKey(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := h.userIDFromRequest(c)
	if !ok {
		return
	}
	keyID, ok := h.parseIDParam(c, "id", "Invalid key ID")
	if !ok {
		return
	}
	if err := h.factory.RevokeAPIKey(userID, keyID).Execute(ctx); err != nil {
		h.handleDomainError(ctx, c, "revoke API key", err)
		return
	}
	router.RespondOK(c, "API key revoked successfully", nil)
}

// CreateUser creates a new user (admin only)
func (h *Handler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	input, ok := h.buildCreateUserInput(c)
	if !ok {
		return
	}
	user, err := h.factory.CreateUser(input).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "create user", err)
		return
	}
	router.RespondCreated(c, "User created successfully", user)
}

// GetUser returns a single user by ID (admin only)
func (h *Handler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := h.parseIDParam(c, "id", "Invalid user ID")
	if !ok {
		return
	}
	user, err := h.factory.GetUser(userID).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "get user", err)
		return
	}
	router.RespondOK(c, "Success", user)
}

// ListUsers lists all users (admin only)
func (h *Handler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	users, err := h.factory.ListUsers().Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "list users", err)
		return
	}
	router.RespondOK(c, "Success", gin.H{"users": users})
}

// UpdateUser updates a user's email, role, or status (admin only)
func (h *Handler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := h.parseIDParam(c, "id", "Invalid user ID")
	if !ok {
		return
	}
	input, ok := h.buildUpdateUserInput(c)
	if !ok {
		return
	}
	user, err := h.factory.UpdateUser(userID, input).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "update user", err)
		return
	}
	router.RespondOK(c, "User updated successfully", user)
}

// DeleteUser removes a user and cascades to their API keys (admin only)
func (h *Handler) DeleteUser(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := h.parseIDParam(c, "id", "Invalid user ID")
	if !ok {
		return
	}
	if err := h.factory.DeleteUser(userID).Execute(ctx); err != nil {
		h.handleDomainError(ctx, c, "delete user", err)
		return
	}
	router.RespondNoContent(c)
}
