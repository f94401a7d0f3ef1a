package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/substratehq/substrate/engine/core"
	"github.com/substratehq/substrate/engine/project/model"
	"github.com/substratehq/substrate/engine/project/uc"
)

var projectColumns = []string{
	"id", "name", "slug", "description", "owner_id", "created_by", "created_at", "updated_at",
}

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

// Repository implements the project repository interface using PostgreSQL
type Repository struct {
	db DBInterface
}

// DBInterface defines the minimal interface needed by the repository
type DBInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewRepository creates a new project repository
func NewRepository(db DBInterface) uc.Repository {
	return &Repository{db: db}
}

// Create inserts a new project
func (r *Repository) Create(ctx context.Context, project *model.Project) error {
	query, args, err := squirrel.Insert("projects").
		Columns(projectColumns...).
		Values(
			project.ID,
			project.Name,
			project.Slug,
			project.Description,
			project.OwnerID,
			project.CreatedBy,
			project.CreatedAt,
			project.UpdatedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uc.ErrSlugExists
		}
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by ID
func (r *Repository) GetByID(ctx context.Context, id core.ID) (*model.Project, error) {
	query, args, err := squirrel.Select(projectColumns...).
		From("projects").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var project model.Project
	if err := pgxscan.Get(ctx, r.db, &project, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrProjectNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return &project, nil
}

// GetBySlug retrieves a project by slug
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*model.Project, error) {
	query, args, err := squirrel.Select(projectColumns...).
		From("projects").
		Where(squirrel.Eq{"slug": slug}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var project model.Project
	if err := pgxscan.Get(ctx, r.db, &project, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, uc.ErrProjectNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return &project, nil
}

// List retrieves a page of projects, newest first
func (r *Repository) List(ctx context.Context, filter uc.ListFilter) ([]*model.Project, error) {
	qb := squirrel.Select(projectColumns...).
		From("projects").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)
	if filter.OwnerID != nil {
		qb = qb.Where(squirrel.Eq{"owner_id": *filter.OwnerID})
	}
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var projects []*model.Project
	if err := pgxscan.Select(ctx, r.db, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("scanning projects: %w", err)
	}
	return projects, nil
}

// Count returns the number of projects matching the filter
func (r *Repository) Count(ctx context.Context, filter uc.ListFilter) (int64, error) {
	qb := squirrel.Select("COUNT(*)").
		From("projects").
		PlaceholderFormat(squirrel.Dollar)
	if filter.OwnerID != nil {
		qb = qb.Where(squirrel.Eq{"owner_id": *filter.OwnerID})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}
	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting projects: %w", err)
	}
	return count, nil
}

// Update updates project fields
func (r *Repository) Update(ctx context.Context, project *model.Project) error {
	query, args, err := squirrel.Update("projects").
		Set("name", project.Name).
		Set("slug", project.Slug).
		Set("description", project.Description).
		Set("updated_at", project.UpdatedAt).
		Where(squirrel.Eq{"id": project.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uc.ErrSlugExists
		}
		return fmt.Errorf("updating project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrProjectNotFound
	}
	return nil
}

// Delete removes a project by ID
func (r *Repository) Delete(ctx context.Context, id core.ID) error {
	query, args, err := squirrel.Delete("projects").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uc.ErrProjectNotFound
	}
	return nil
}
