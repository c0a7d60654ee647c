package pages

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTitleRequired      = errors.New("pages: title is required")
	ErrSlugRequired       = errors.New("pages: slug is required")
	ErrSlugInvalid        = errors.New("pages: slug contains invalid characters")
	ErrSlugExists         = errors.New("pages: slug already exists")
	ErrStatusInvalid      = errors.New("pages: unknown status")
	ErrPageRequired       = errors.New("pages: page id required")
	ErrVersionRequired    = errors.New("pages: version number required")
	ErrVersioningDisabled = errors.New("pages: versioning feature disabled")
	ErrComponentRequired  = errors.New("pages: component id required")
	ErrNotAComponent      = errors.New("pages: referenced schema is not a component")
	ErrSnapshotCorrupt    = errors.New("pages: version snapshot is malformed")
	ErrValidationFailed   = errors.New("pages: component data validation failed")
)

// NotFoundError indicates a missing page, component or version.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "pages: not found"
	}
	resource := e.Resource
	if resource == "" {
		resource = "record"
	}
	if e.Key == "" {
		return fmt.Sprintf("pages: %s not found", resource)
	}
	return fmt.Sprintf("pages: %s %q not found", resource, e.Key)
}

// ConflictError surfaces slug unique index violations.
type ConflictError struct {
	Slug string
}

func (e *ConflictError) Error() string {
	if e == nil || e.Slug == "" {
		return ErrSlugExists.Error()
	}
	return fmt.Sprintf("%s: %q", ErrSlugExists.Error(), e.Slug)
}

func (e *ConflictError) Unwrap() error {
	return ErrSlugExists
}

// FieldIssue is a single violation raised while validating component data.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field violations for one component instance.
// ComponentID identifies the schema whose rules were violated.
type ValidationError struct {
	ComponentID uuid.UUID
	Issues      []FieldIssue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if strings.TrimSpace(issue.Field) == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
