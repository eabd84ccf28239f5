package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches the requested id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned by backends whose ids have a fixed format
	// when the supplied id cannot be parsed.
	ErrInvalidID = errors.New("invalid id")
)
