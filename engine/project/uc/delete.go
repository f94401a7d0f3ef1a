package uc

import (
	"context"
	"errors"
	"fmt"

	authmodel "github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/project"
	"github.com/substratehq/substrate/pkg/logger"
)

// DeleteProject use case for deleting a project. Only the owner or an admin
// may delete.
type DeleteProject struct {
	repo      Repository
	caller    *authmodel.User
	projectID core.ID
}

// NewDeleteProject creates a new delete project use case
func NewDeleteProject(repo Repository, caller *authmodel.User, projectID core.ID) *DeleteProject {
	return &DeleteProject{
		repo:      repo,
		caller:    caller,
		projectID: projectID,
	}
}

// Execute deletes the project after an owner-or-admin check
func (uc *DeleteProject) Execute(ctx context.Context) error {
	log := logger.FromContext(ctx)

	proj, err := uc.repo.GetByID(ctx, uc.projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return core.NewError(err, project.ErrCodeNotFound, map[string]any{"project_id": uc.projectID})
		}
		return fmt.Errorf("failed to get project: %w", err)
	}
	if proj.OwnerID != uc.caller.ID && !uc.caller.IsAdmin() {
		return core.NewError(
			errors.New("only the project owner or an admin may delete a project"),
			project.ErrCodeForbidden,
			map[string]any{"project_id": uc.projectID},
		)
	}

	if err := uc.repo.Delete(ctx, uc.projectID); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return core.NewError(err, project.ErrCodeNotFound, map[string]any{"project_id": uc.projectID})
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	log.Info("Project deleted", "project_id", uc.projectID, "deleted_by", uc.caller.ID)
	return nil
}
