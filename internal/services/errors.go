package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMissingImage is returned when a create request carries no upload.
	ErrMissingImage = errors.New("no image file uploaded")
	// ErrImageIO is returned when an upload cannot be staged or read back.
	ErrImageIO = errors.New("error reading and encoding image")
	// ErrMissingRequiredField is wrapped by every ValidationError.
	ErrMissingRequiredField = errors.New("missing required field")
)

// FieldError describes why a single field was rejected.
type FieldError struct {
	// Kind is "required" for a missing value or the target type for a
	// value that could not be converted.
	Kind    string
	Message string
}

// ValidationError reports the fields a write was rejected for.
type ValidationError struct {
	// Model is the record kind, "User" or "Event".
	Model string
	// Fields is keyed by the wire field name.
	Fields map[string]FieldError
}

// NewCastError reports a value that could not be converted to kind.
func NewCastError(model, field, kind, value string) *ValidationError {
	return &ValidationError{
		Model: model,
		Fields: map[string]FieldError{
			field: {
				Kind:    kind,
				Message: fmt.Sprintf("Cast to %s failed for value %q (type string) at path %q", kind, value, field),
			},
		},
	}
}

func (e *ValidationError) Error() string {
	names := e.FieldNames()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name].Message))
	}
	return fmt.Sprintf("%s validation failed: %s", e.Model, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrMissingRequiredField
}

// FieldNames returns the failing field names in a stable order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
