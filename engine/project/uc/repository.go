package uc

import (
	"context"

	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/project/model"
)

// ListFilter narrows and pages project listings
type ListFilter struct {
	// OwnerID limits results to a single owner when set
	OwnerID *core.ID
	Limit   int
	Offset  int
}

// Repository defines all data access operations for the project domain
type Repository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id core.ID) (*model.Project, error)
	GetBySlug(ctx context.Context, slug string) (*model.Project, error)
	List(ctx context.Context, filter ListFilter) ([]*model.Project, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id core.ID) error
}
