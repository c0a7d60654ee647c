package pages

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service describes page composition and versioning capabilities.
type Service interface {
	Create(ctx context.Context, req CreatePageRequest) (*Page, error)
	Update(ctx context.Context, req UpdatePageRequest) (*Page, error)
	Delete(ctx context.Context, req DeletePageRequest) error
	Get(ctx context.Context, id uuid.UUID) (*Page, error)
	GetBySlug(ctx context.Context, slug string) (*Page, error)
	GetHomepage(ctx context.Context) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	Search(ctx context.Context, query string) ([]*Page, error)

	AssignComponents(ctx context.Context, req AssignComponentsRequest) (*Page, error)

	ListVersions(ctx context.Context, pageID uuid.UUID) ([]*Version, error)
	GetVersion(ctx context.Context, pageID uuid.UUID, version int) (*Version, error)
	RestoreVersion(ctx context.Context, req RestoreVersionRequest) (*Page, error)
	CompareVersions(ctx context.Context, req CompareVersionsRequest) (*VersionDiff, error)
}

// ComponentInput is one component instance payload for a page write.
type ComponentInput struct {
	ComponentID uuid.UUID      `json:"component_id"`
	Data        map[string]any `json:"data"`
	Order       *int           `json:"order,omitempty"`
}

// CreatePageRequest captures the payload required to create a page.
type CreatePageRequest struct {
	Title       string           `json:"title"`
	Slug        string           `json:"slug,omitempty"`
	IsHomepage  bool             `json:"is_homepage,omitempty"`
	Status      string           `json:"status,omitempty"`
	PublishedAt *time.Time       `json:"published_at,omitempty"`
	CreatedBy   *uuid.UUID       `json:"created_by,omitempty"`
	Components  []ComponentInput `json:"components,omitempty"`
}

// UpdatePageRequest captures the mutable fields for an existing page. Nil
// pointers leave the current value untouched; a nil Components slice leaves
// the component set alone while a non-nil one replaces it wholesale.
type UpdatePageRequest struct {
	ID          uuid.UUID        `json:"id"`
	Title       *string          `json:"title,omitempty"`
	Slug        *string          `json:"slug,omitempty"`
	IsHomepage  *bool            `json:"is_homepage,omitempty"`
	Status      *string          `json:"status,omitempty"`
	PublishedAt *time.Time       `json:"published_at,omitempty"`
	UpdatedBy   *uuid.UUID       `json:"updated_by,omitempty"`
	Components  []ComponentInput `json:"components,omitempty"`
}

// DeletePageRequest captures the information required to delete a page.
type DeletePageRequest struct {
	ID         uuid.UUID `json:"id"`
	HardDelete bool      `json:"hard_delete,omitempty"`
}

// AssignComponentsRequest replaces a page's component set wholesale.
type AssignComponentsRequest struct {
	PageID     uuid.UUID        `json:"page_id"`
	Components []ComponentInput `json:"components"`
	UpdatedBy  *uuid.UUID       `json:"updated_by,omitempty"`
}

// RestoreVersionRequest rolls a page back to a historical version.
type RestoreVersionRequest struct {
	PageID     uuid.UUID  `json:"page_id"`
	Version    int        `json:"version"`
	RestoredBy *uuid.UUID `json:"restored_by,omitempty"`
}

// CompareVersionsRequest diffs two versions of the same page.
type CompareVersionsRequest struct {
	PageID uuid.UUID `json:"page_id"`
	From   int       `json:"from"`
	To     int       `json:"to"`
}

// Change holds the before and after values for one snapshot path. A nil
// side means the path is absent in that version.
type Change struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// VersionDiff is the keyed set of changes between two versions. Keys are
// dotted paths into the snapshot.
type VersionDiff struct {
	PageID  uuid.UUID         `json:"page_id"`
	From    int               `json:"from"`
	To      int               `json:"to"`
	Changes map[string]Change `json:"changes"`
}
