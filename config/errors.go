package config

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrMissingServiceName = errors.New("config: service.name is required")
	ErrDuplicateProbe     = errors.New("config: duplicate probe name")
	ErrUnknownProbeType   = errors.New("config: unknown probe type")
	ErrUnknownSinkType    = errors.New("config: unknown sink type")
	ErrUnknownCache       = errors.New("config: unknown status cache")
	ErrInvalidValue       = errors.New("config: invalid value")
)

// FieldError reports which setting failed validation.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

func invalid(field, format string, args ...any) error {
	return fieldErr(field, fmt.Errorf("%w: "+format, append([]any{ErrInvalidValue}, args...)...))
}
