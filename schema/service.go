package schema

import (
	"context"

	"github.com/google/uuid"
)

// Service describes the schema builder capabilities shared by collections
// and components.
type Service interface {
	Build(ctx context.Context, req BuildSchemaRequest) (*Schema, error)
	Update(ctx context.Context, req UpdateSchemaRequest) (*Schema, error)
	Delete(ctx context.Context, req DeleteSchemaRequest) error
	Get(ctx context.Context, id uuid.UUID) (*Schema, error)
	GetBySlug(ctx context.Context, kind Kind, slug string) (*Schema, error)
	List(ctx context.Context, kind Kind) ([]*Schema, error)
	Search(ctx context.Context, kind Kind, query string) ([]*Schema, error)
}

// FieldInput captures one field definition payload. Order falls back to the
// payload's array index when nil.
type FieldInput struct {
	Name         string         `json:"name"`
	Slug         string         `json:"slug,omitempty"`
	DataType     string         `json:"data_type"`
	Config       map[string]any `json:"config,omitempty"`
	IsRequired   bool           `json:"is_required,omitempty"`
	DefaultValue *string        `json:"default_value,omitempty"`
	HelpText     *string        `json:"help_text,omitempty"`
	Order        *int           `json:"order,omitempty"`
}

// BuildSchemaRequest captures the payload required to create a schema with
// its full field set.
type BuildSchemaRequest struct {
	Kind        Kind
	Name        string
	Slug        string
	Description *string
	IsActive    *bool
	Fields      []FieldInput
}

// UpdateSchemaRequest merges schema attributes and replaces the entire field
// set with the supplied payload.
type UpdateSchemaRequest struct {
	ID          uuid.UUID
	Name        *string
	Slug        *string
	Description *string
	IsActive    *bool
	Fields      []FieldInput
}

// DeleteSchemaRequest captures the information required to delete a schema.
type DeleteSchemaRequest struct {
	ID         uuid.UUID
	HardDelete bool
}
