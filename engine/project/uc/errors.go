package uc

import "errors"

// ErrProjectNotFound is returned when a project is not found in the repository
var ErrProjectNotFound = errors.New("project not found")

// ErrSlugExists is returned when a project with the same slug already exists
var ErrSlugExists = errors.New("project slug already exists")
