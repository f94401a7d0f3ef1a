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
	"github.com/substratehq/substrate/pkg/logger"
)

// CreateProjectInput represents the input for creating a project
type CreateProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateProject use case for creating a new project owned by the caller
type CreateProject struct {
	repo   Repository
	caller *authmodel.User
	input  *CreateProjectInput
}

// NewCreateProject creates a new create project use case
func NewCreateProject(repo Repository, caller *authmodel.User, input *CreateProjectInput) *CreateProject {
	return &CreateProject{
		repo:   repo,
		caller: caller,
		input:  input,
	}
}

// Execute creates a new project
func (uc *CreateProject) Execute(ctx context.Context) (*model.Project, error) {
	log := logger.FromContext(ctx)

	name := strings.TrimSpace(uc.input.Name)
	if name == "" {
		return nil, core.NewError(
			errors.New("project name must not be empty"),
			project.ErrCodeInvalidName,
			nil,
		)
	}
	projectSlug := model.SlugFromName(name)
	if projectSlug == "" {
		return nil, core.NewError(
			fmt.Errorf("project name %q yields an empty slug", name),
			project.ErrCodeInvalidName,
			map[string]any{"name": name},
		)
	}

	if existing, err := uc.repo.GetBySlug(ctx, projectSlug); err == nil && existing != nil {
		return nil, core.NewError(
			ErrSlugExists,
			project.ErrCodeSlugExists,
			map[string]any{"slug": projectSlug},
		)
	} else if err != nil && !errors.Is(err, ErrProjectNotFound) {
		return nil, fmt.Errorf("checking existing slug: %w", err)
	}

	projectID, err := core.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate project ID: %w", err)
	}
	now := time.Now().UTC()
	proj := &model.Project{
		ID:          projectID,
		Name:        name,
		Slug:        projectSlug,
		Description: uc.input.Description,
		OwnerID:     uc.caller.ID,
		CreatedBy:   uc.caller.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, proj); err != nil {
		if errors.Is(err, ErrSlugExists) {
			return nil, core.NewError(err, project.ErrCodeSlugExists, map[string]any{"slug": projectSlug})
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	log.Info("Project created", "project_id", proj.ID, "slug", proj.Slug, "owner_id", proj.OwnerID)
	return proj, nil
}
