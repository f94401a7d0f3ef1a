package uc

import (
	authmodel "github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/core"
)

// Factory wires use cases to the repository so handlers never touch data
// access directly.
type Factory struct {
	repo Repository
}

// NewFactory creates a new use case factory
func NewFactory(repo Repository) *Factory {
	return &Factory{repo: repo}
}

func (f *Factory) CreateProject(caller *authmodel.User, input *CreateProjectInput) *CreateProject {
	return NewCreateProject(f.repo, caller, input)
}

func (f *Factory) GetProject(projectID core.ID) *GetProject {
	return NewGetProject(f.repo, projectID)
}

func (f *Factory) ListProjects(caller *authmodel.User, input *ListProjectsInput) *ListProjects {
	return NewListProjects(f.repo, caller, input)
}

func (f *Factory) UpdateProject(caller *authmodel.User, projectID core.ID, input *UpdateProjectInput) *UpdateProject {
	return NewUpdateProject(f.repo, caller, projectID, input)
}

func (f *Factory) DeleteProject(caller *authmodel.User, projectID core.ID) *DeleteProject {
	return NewDeleteProject(f.repo, caller, projectID)
}
