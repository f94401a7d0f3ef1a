package uc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authmodel "github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/project"
	"github.com/substratehq/substrate/engine/project/model"
)

// UpdateProjectInput represents the input for updating a project
type UpdateProjectInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateProject use case for updating a project. Only the owner or an admin
// may update.
type UpdateProject struct {
	repo      Repository
	caller    *authmodel.User
	projectID core.ID
	input     *UpdateProjectInput
}

// NewUpdateProject creates a new update project use case
func NewUpdateProject(
	repo Repository,
	caller *authmodel.User,
	projectID core.ID,
	input *UpdateProjectInput,
) *UpdateProject {
	return &UpdateProject{
		repo:      repo,
		caller:    caller,
		projectID: projectID,
		input:     input,
	}
}

// Execute updates the project after an owner-or-admin check
func (uc *UpdateProject) Execute(ctx context.Context) (*model.Project, error) {
	proj, err := uc.repo.GetByID(ctx, uc.projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, core.NewError(err, project.ErrCodeNotFound, map[string]any{"project_id": uc.projectID})
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if proj.OwnerID != uc.caller.ID && !uc.caller.IsAdmin() {
		return nil, core.NewError(
			errors.New("only the project owner or an admin may update a project"),
			project.ErrCodeForbidden,
			map[string]any{"project_id": uc.projectID},
		)
	}

	if uc.input.Name != nil {
		name := strings.TrimSpace(*uc.input.Name)
		if name == "" {
			return nil, core.NewError(
				errors.New("project name must not be empty"),
				project.ErrCodeInvalidName,
				nil,
			)
		}
		newSlug := model.SlugFromName(name)
		if newSlug != proj.Slug {
			if existing, err := uc.repo.GetBySlug(ctx, newSlug); err == nil && existing != nil && existing.ID != proj.ID {
				return nil, core.NewError(ErrSlugExists, project.ErrCodeSlugExists, map[string]any{"slug": newSlug})
			} else if err != nil && !errors.Is(err, ErrProjectNotFound) {
				return nil, fmt.Errorf("checking existing slug: %w", err)
			}
		}
		proj.Name = name
		proj.Slug = newSlug
	}
	if uc.input.Description != nil {
		proj.Description = *uc.input.Description
	}
	proj.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, proj); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, core.NewError(err, project.ErrCodeNotFound, map[string]any{"project_id": uc.projectID})
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return proj, nil
}
