package schema

import (
	"context"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/schema"
)

// Repository persists schemas together with their field definitions. Create
// and Update are atomic: the schema row and the full field set commit or roll
// back as one unit, and Update replaces the previous field set wholesale.
// The store keeps a unique index on (kind, slug) as the final arbiter for
// slug collisions; violations surface as *schema.ConflictError.
type Repository interface {
	Create(ctx context.Context, record *schema.Schema) (*schema.Schema, error)
	Update(ctx context.Context, record *schema.Schema) (*schema.Schema, error)
	Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error
	GetByID(ctx context.Context, id uuid.UUID) (*schema.Schema, error)
	GetBySlug(ctx context.Context, kind schema.Kind, slug string) (*schema.Schema, error)
	List(ctx context.Context, kind schema.Kind) ([]*schema.Schema, error)
	Search(ctx context.Context, kind schema.Kind, query string) ([]*schema.Schema, error)
	// ListSlugs returns the live slugs for one kind, used by the builder's
	// best-effort uniqueness pre-check.
	ListSlugs(ctx context.Context, kind schema.Kind) (map[uuid.UUID]string, error)
}

// IDGenerator produces identifiers for new records.
type IDGenerator func() uuid.UUID
