package uc

import (
	"context"
	"fmt"

	authmodel "github.com/substratehq/substrate/engine/auth/model"
	"github.com/substratehq/substrate/engine/project/model"
)

// ListProjectsInput carries pagination already clamped by the transport layer
type ListProjectsInput struct {
	Limit  int
	Offset int
}

// ListProjectsOutput bundles a page of projects with the total count
type ListProjectsOutput struct {
	Projects []*model.Project
	Total    int64
}

// ListProjects use case for listing projects visible to the caller.
// Admins see every project; members only see their own.
type ListProjects struct {
	repo   Repository
	caller *authmodel.User
	input  *ListProjectsInput
}

// NewListProjects creates a new list projects use case
func NewListProjects(repo Repository, caller *authmodel.User, input *ListProjectsInput) *ListProjects {
	return &ListProjects{
		repo:   repo,
		caller: caller,
		input:  input,
	}
}

// Execute returns a page of projects and the total matching count
func (uc *ListProjects) Execute(ctx context.Context) (*ListProjectsOutput, error) {
	filter := ListFilter{
		Limit:  uc.input.Limit,
		Offset: uc.input.Offset,
	}
	if !uc.caller.IsAdmin() {
		ownerID := uc.caller.ID
		filter.OwnerID = &ownerID
	}
	projects, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	total, err := uc.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	return &ListProjectsOutput{
		Projects: projects,
		Total:    total,
	}, nil
}
