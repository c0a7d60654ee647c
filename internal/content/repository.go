package content

import (
	"context"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/content"
)

// IDGenerator produces identifiers for new items.
type IDGenerator func() uuid.UUID

// Repository persists collection items.
type Repository interface {
	Create(ctx context.Context, item *content.Item) (*content.Item, error)
	Update(ctx context.Context, item *content.Item) (*content.Item, error)
	Delete(ctx context.Context, id uuid.UUID, hard bool) error
	GetByID(ctx context.Context, id uuid.UUID) (*content.Item, error)

	// ListByCollection returns live items ordered by position. With
	// publishedOnly set, unpublished items are filtered out.
	ListByCollection(ctx context.Context, collectionID uuid.UUID, publishedOnly bool) ([]*content.Item, error)

	// CountByCollection reports how many live items the collection holds,
	// for computing the default append position.
	CountByCollection(ctx context.Context, collectionID uuid.UUID) (int, error)
}
