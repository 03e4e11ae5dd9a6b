package model

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// ValidationError reports a broken business rule on a single field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// FormatError is a ValidationError raised for an unparsable date string.
type FormatError struct {
	Field string
	Value string
}

func (e *FormatError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %q is not a date in YYYY-MM-DD format", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error {
	return &ValidationError{Field: e.Field, Msg: "must be in YYYY-MM-DD format"}
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
