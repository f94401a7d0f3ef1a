package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/project"
	"github.com/substratehq/substrate/engine/project/model"
)

// GetProject use case for retrieving a single project
type GetProject struct {
	repo      Repository
	projectID core.ID
}

// NewGetProject creates a new get project use case
func NewGetProject(repo Repository, projectID core.ID) *GetProject {
	return &GetProject{
		repo:      repo,
		projectID: projectID,
	}
}

// Execute retrieves the project by ID
func (uc *GetProject) Execute(ctx context.Context) (*model.Project, error) {
	proj, err := uc.repo.GetByID(ctx, uc.projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return nil, core.NewError(
				err,
				project.ErrCodeNotFound,
				map[string]any{"project_id": uc.projectID},
			)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return proj, nil
}
