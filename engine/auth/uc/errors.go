package uc

import "errors"

// ErrUserNotFound is returned when a user is not found in the repository
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when a user with the same email already exists
var ErrEmailExists = errors.New("email already exists")

// ErrAPIKeyNotFound is returned when an API key is not found in the repository
var ErrAPIKeyNotFound = errors.New("api key not found")

// ErrInvalidAPIKey is returned when API key validation fails
var ErrInvalidAPIKey = errors.New("invalid API key")

// ErrAlreadyBootstrapped is returned when an admin user already exists
var ErrAlreadyBootstrapped = errors.New("system already bootstrapped")
