package pages

import (
	"context"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/pages"
)

// IDGenerator produces identifiers for new pages, components and versions.
type IDGenerator func() uuid.UUID

// Repository persists pages with their component pivots and version history.
// Write operations are atomic: the page row, its component set, the version
// append and the retention prune all commit or roll back together. When the
// page is flagged as homepage the write also clears the flag on every other
// page inside the same transaction. A nil version skips the history append.
type Repository interface {
	Create(ctx context.Context, page *pages.Page, version *pages.Version) (*pages.Page, error)

	// Update rewrites the page row. When replaceComponents is true the
	// previous component set is fully removed and the page's Components
	// slice written in its place.
	Update(ctx context.Context, page *pages.Page, replaceComponents bool, version *pages.Version) (*pages.Page, error)

	// Restore behaves like Update with component replacement, but takes a
	// row lock on the page first to serialize concurrent restores.
	Restore(ctx context.Context, page *pages.Page, version *pages.Version) (*pages.Page, error)

	Delete(ctx context.Context, id uuid.UUID, hard bool) error

	GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error)
	GetBySlug(ctx context.Context, slug string) (*pages.Page, error)
	GetHomepage(ctx context.Context) (*pages.Page, error)
	List(ctx context.Context) ([]*pages.Page, error)
	Search(ctx context.Context, query string) ([]*pages.Page, error)

	// ListSlugs returns slug by page ID for live pages, for uniqueness
	// pre-checks.
	ListSlugs(ctx context.Context) (map[uuid.UUID]string, error)

	ListVersions(ctx context.Context, pageID uuid.UUID) ([]*pages.Version, error)
	GetVersion(ctx context.Context, pageID uuid.UUID, version int) (*pages.Version, error)
}
