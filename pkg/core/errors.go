package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrMalformedValue = errors.New("malformed value")
	ErrMissingField   = errors.New("missing field")
	ErrMissingColumn  = errors.New("missing column")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknownDataset = errors.New("unknown dataset")
	ErrInvalidSchema  = errors.New("invalid schema")
	ErrNoManualData   = errors.New("manual data not found")
)

// FieldError reports a value that could not be converted to its declared feature.
type FieldError struct {
	Key   string
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("field %q: value %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("example %s: field %q: value %q: %v", e.Key, e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
