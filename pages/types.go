package pages

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/compositor-cms/compositor/schema"
)

// Page statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ValidStatus reports whether value is a recognised page status.
func ValidStatus(value string) bool {
	switch value {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	default:
		return false
	}
}

// Page is a routable document assembled from ordered component instances.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Slug        string     `bun:"slug,notnull" json:"slug"`
	IsHomepage  bool       `bun:"is_homepage,notnull,default:false" json:"is_homepage"`
	Status      string     `bun:"status,notnull" json:"status"`
	PublishedAt *time.Time `bun:"published_at,nullzero" json:"published_at,omitempty"`
	CreatedBy   *uuid.UUID `bun:"created_by,type:uuid" json:"created_by,omitempty"`
	UpdatedBy   *uuid.UUID `bun:"updated_by,type:uuid" json:"updated_by,omitempty"`
	DeletedAt   *time.Time `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Components []*Component `bun:"rel:has-many,join:id=page_id" json:"components,omitempty"`
}

// Component is one concrete usage of a component schema on a page, carrying
// its own data payload and position. Data is validated against the schema's
// field definitions when written, never re-validated on read.
type Component struct {
	bun.BaseModel `bun:"table:page_components,alias:pc"`

	ID          uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	PageID      uuid.UUID      `bun:"page_id,notnull,type:uuid" json:"page_id"`
	ComponentID uuid.UUID      `bun:"component_id,notnull,type:uuid" json:"component_id"`
	Data        map[string]any `bun:"data,type:jsonb" json:"data"`
	Order       int            `bun:"position,notnull" json:"order"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Definition *schema.Schema `bun:"rel:belongs-to,join:component_id=id" json:"definition,omitempty"`
}

// Version snapshots a page's full state for history and restore.
type Version struct {
	bun.BaseModel `bun:"table:page_versions,alias:pv"`

	ID            uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	PageID        uuid.UUID      `bun:"page_id,notnull,type:uuid" json:"page_id"`
	Version       int            `bun:"version,notnull" json:"version"`
	Snapshot      map[string]any `bun:"snapshot,type:jsonb,notnull" json:"snapshot"`
	ChangeSummary *string        `bun:"change_summary" json:"change_summary,omitempty"`
	CreatedBy     *uuid.UUID     `bun:"created_by,type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
