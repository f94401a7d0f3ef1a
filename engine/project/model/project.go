package model

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/substratehq/substrate/engine/core"
)

// Project represents a tenant-owned project
type Project struct {
	ID          core.ID   `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Slug        string    `db:"slug"        json:"slug"`
	Description string    `db:"description" json:"description"`
	OwnerID     core.ID   `db:"owner_id"    json:"owner_id"`
	CreatedBy   core.ID   `db:"created_by"  json:"created_by"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// SlugFromName derives the URL-safe slug for a project name
func SlugFromName(name string) string {
	return slug.Make(name)
}
