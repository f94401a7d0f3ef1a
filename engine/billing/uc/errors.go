package uc

import "errors"

// ErrCustomerNotFound is returned when no billing customer exists for a user
var ErrCustomerNotFound = errors.New("billing customer not found")

// ErrSubscriptionNotFound is returned when a customer has no subscription
var ErrSubscriptionNotFound = errors.New("subscription not found")

// ErrEventExists is returned when a webhook event was already processed
var ErrEventExists = errors.New("event already processed")

// ErrEventNotFound is returned when no recorded event matches a provider event ID
var ErrEventNotFound = errors.New("event not found")
