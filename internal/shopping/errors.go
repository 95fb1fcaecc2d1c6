package shopping

import (
	"errors"

	"family-planner/internal/planner"
)

var (
	// ErrNoFamily is returned by mutations when the actor has no household.
	ErrNoFamily = errors.New("user has no family")

	// ErrUnauthenticated is returned when an operation needs a user ID.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrItemNotFound is returned when no item matches a name and unit.
	ErrItemNotFound = errors.New("shopping item not found")

	// ErrInvalidItem is returned for manual items without a usable name or
	// with a negative quantity.
	ErrInvalidItem = errors.New("invalid shopping item")

	// ErrInvalidWeek is returned when a week cannot be parsed.
	ErrInvalidWeek = planner.ErrInvalidWeek
)
