package schema

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/compositor-cms/compositor/fields"
)

// Kind discriminates the two structurally identical schema flavours. Both
// share the builder, slug and field-sync logic; only their role differs:
// collections own freeform items, components are instantiated on pages.
type Kind string

const (
	KindCollection Kind = "collection"
	KindComponent  Kind = "component"
)

// Valid reports whether the kind belongs to the supported set.
func (k Kind) Valid() bool {
	return k == KindCollection || k == KindComponent
}

// ParseKind resolves a raw string into a Kind.
func ParseKind(value string) (Kind, bool) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	if !kind.Valid() {
		return "", false
	}
	return kind, true
}

// Schema is a named, reusable content shape owning an ordered set of typed
// field definitions.
type Schema struct {
	bun.BaseModel `bun:"table:schemas,alias:s"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Kind        Kind       `bun:"kind,notnull" json:"kind"`
	Name        string     `bun:"name,notnull" json:"name"`
	Slug        string     `bun:"slug,notnull" json:"slug"`
	Description *string    `bun:"description" json:"description,omitempty"`
	IsActive    bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	DeletedAt   *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Fields []*Field `bun:"rel:has-many,join:id=schema_id" json:"fields,omitempty"`
}

// Field is one typed, orderable attribute within a schema. Config is a
// type-specific JSON map (accepted mime types, option lists, visibility
// rules under the "visibility" key).
type Field struct {
	bun.BaseModel `bun:"table:schema_fields,alias:sf"`

	ID           uuid.UUID       `bun:",pk,type:uuid" json:"id"`
	SchemaID     uuid.UUID       `bun:"schema_id,notnull,type:uuid" json:"schema_id"`
	Name         string          `bun:"name,notnull" json:"name"`
	Slug         string          `bun:"slug,notnull" json:"slug"`
	DataType     fields.DataType `bun:"data_type,notnull" json:"data_type"`
	Config       map[string]any  `bun:"config,type:jsonb" json:"config,omitempty"`
	IsRequired   bool            `bun:"is_required,notnull,default:false" json:"is_required"`
	DefaultValue *string         `bun:"default_value" json:"default_value,omitempty"`
	HelpText     *string         `bun:"help_text" json:"help_text,omitempty"`
	Order        int             `bun:"field_order,notnull,default:0" json:"order"`
	CreatedAt    time.Time       `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time       `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// VisibilityRules extracts the conditional visibility rule tree from the
// field config, nil when absent.
func (f *Field) VisibilityRules() any {
	if f == nil || f.Config == nil {
		return nil
	}
	return f.Config["visibility"]
}
