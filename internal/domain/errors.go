package domain

import (
	"errors"
	"sort"
	"strings"
)

// Sentinel errors returned by repositories and services.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// FieldErrors maps a request field name to a human-readable message.
type FieldErrors map[string]string

// ValidationError carries per-field messages. errors.Is(err, ErrValidation) reports true.
type ValidationError struct {
	Fields FieldErrors
}

// NewValidationError wraps fields in a ValidationError.
func NewValidationError(fields FieldErrors) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
