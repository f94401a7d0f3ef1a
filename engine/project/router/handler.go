package router

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/substratehq/substrate/engine/auth"
	authmodel "github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/infra/server/router"
	"github.com/substratehq/substrate/engine/project"
	"github.com/substratehq/substrate/engine/project/uc"
	"github.com/substratehq/substrate/pkg/logger"
)

// CreateProjectRequest is the payload for creating a project
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateProjectRequest is the payload for updating a project
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Handler handles project-related HTTP requests
type Handler struct {
	factory *uc.Factory
}

// NewHandler creates a new project handler
func NewHandler(factory *uc.Factory) *Handler {
	return &Handler{
		factory: factory,
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

func (h *Handler) parseIDParam(c *gin.Context) (core.ID, bool) {
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		router.RespondWithCodedError(c, router.ErrBadRequestCode, "Invalid project ID", err)
		return "", false
	}
	return id, true
}

// handleDomainError maps domain errors onto the coded error envelope
func (h *Handler) handleDomainError(ctx context.Context, c *gin.Context, action string, err error) {
	log := logger.FromContext(ctx)
	log.Error("Project request failed", "action", action, "error", err)
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		switch coreErr.Code {
		case project.ErrCodeNotFound:
			router.RespondWithCodedError(c, router.ErrNotFoundCode, "Project not found", nil)
			return
		case project.ErrCodeForbidden:
			router.RespondWithCodedError(c, router.ErrForbiddenCode, "Access denied", nil)
			return
		case project.ErrCodeSlugExists:
			router.RespondWithCodedError(c, router.ErrConflictCode, "A project with this name already exists", nil)
			return
		case project.ErrCodeInvalidName:
			router.RespondWithCodedError(c, router.ErrBadRequestCode, coreErr.Message, coreErr)
			return
		}
	}
	router.RespondWithServerError(c, router.ErrInternalCode, "Failed to "+action, err)
}

// Create creates a new project owned by the caller
func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	caller, ok := h.callerFromRequest(c)
	if !ok {
		return
	}
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithCodedError(c, router.ErrBadRequestCode, "Invalid request body", err)
		return
	}
	proj, err := h.factory.CreateProject(caller, &uc.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	}).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "create project", err)
		return
	}
	router.RespondCreated(c, "Project created successfully", proj)
}

// Get returns a single project by ID
func (h *Handler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	projectID, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	proj, err := h.factory.GetProject(projectID).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "get project", err)
		return
	}
	router.RespondOK(c, "Success", proj)
}

// List returns a page of projects visible to the caller. The limit query
// parameter is clamped to the pagination ceiling.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	caller, ok := h.callerFromRequest(c)
	if !ok {
		return
	}
	limit := router.LimitOrDefault(c.Query("limit"), router.DefaultLimit, router.MaxLimit)
	offset := router.OffsetOrDefault(c.Query("offset"))
	out, err := h.factory.ListProjects(caller, &uc.ListProjectsInput{
		Limit:  limit,
		Offset: offset,
	}).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "list projects", err)
		return
	}
	router.RespondOK(c, "Success", gin.H{
		"projects": out.Projects,
		"total":    out.Total,
		"limit":    limit,
		"offset":   offset,
	})
}

// Update updates a project's name or description
func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	caller, ok := h.callerFromRequest(c)
	if !ok {
		return
	}
	projectID, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		router.RespondWithCodedError(c, router.ErrBadRequestCode, "Invalid request body", err)
		return
	}
	proj, err := h.factory.UpdateProject(caller, projectID, &uc.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	}).Execute(ctx)
	if err != nil {
		h.handleDomainError(ctx, c, "update project", err)
		return
	}
	router.RespondOK(c, "Project updated successfully", proj)
}

// Delete removes a project
func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	caller, ok := h.callerFromRequest(c)
	if !ok {
		return
	}
	projectID, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	if err := h.factory.DeleteProject(caller, projectID).Execute(ctx); err != nil {
		h.handleDomainError(ctx, c, "delete project", err)
		return
	}
	router.RespondNoContent(c)
}
