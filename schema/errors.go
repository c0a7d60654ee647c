package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNameRequired       = errors.New("schema: name is required")
	ErrKindInvalid        = errors.New("schema: kind must be collection or component")
	ErrIDRequired         = errors.New("schema: id required")
	ErrSlugRequired       = errors.New("schema: unable to derive a slug")
	ErrSlugInvalid        = errors.New("schema: slug contains invalid characters")
	ErrSlugExists         = errors.New("schema: slug already exists")
	ErrFieldNameRequired  = errors.New("schema: field name is required")
	ErrFieldSlugRequired  = errors.New("schema: unable to derive a field slug")
	ErrFieldConfigInvalid = errors.New("schema: field config must be a map")
)

// NotFoundError reports a missing schema lookup.
type NotFoundError struct {
	Kind Kind
	Key  string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "schema: not found"
	}
	kind := string(e.Kind)
	if kind == "" {
		kind = "schema"
	}
	key := strings.TrimSpace(e.Key)
	if key == "" {
		return fmt.Sprintf("schema: %s not found", kind)
	}
	return fmt.Sprintf("schema: %s %q not found", kind, key)
}

// FieldError decorates a field-level build failure with the offending field
// name so callers can surface it next to the right input.
type FieldError struct {
	FieldName string
	Err       error
}

func (e *FieldError) Error() string {
	if e == nil || e.Err == nil {
		return "schema: field error"
	}
	name := strings.TrimSpace(e.FieldName)
	if name == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (field %q)", e.Err.Error(), name)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ConflictError surfaces store-level uniqueness violations that slipped past
// the in-service pre-check under concurrent writes.
type ConflictError struct {
	Kind Kind
	Slug string
}

func (e *ConflictError) Error() string {
	if e == nil {
		return ErrSlugExists.Error()
	}
	slug := strings.TrimSpace(e.Slug)
	if slug == "" {
		return ErrSlugExists.Error()
	}
	return fmt.Sprintf("%s: slug=%s", ErrSlugExists.Error(), slug)
}

func (e *ConflictError) Unwrap() error {
	return ErrSlugExists
}
