package content

import (
	"context"

	"github.com/google/uuid"
)

// Service manages collection items.
type Service interface {
	Create(ctx context.Context, req CreateItemRequest) (*Item, error)
	Update(ctx context.Context, req UpdateItemRequest) (*Item, error)
	Delete(ctx context.Context, req DeleteItemRequest) error
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	List(ctx context.Context, collectionID uuid.UUID) ([]*Item, error)
	ListPublished(ctx context.Context, collectionID uuid.UUID) ([]*Item, error)
}

// CreateItemRequest captures the payload for a new collection item. Order
// defaults to the end of the collection when omitted.
type CreateItemRequest struct {
	CollectionID uuid.UUID      `json:"collection_id"`
	Data         map[string]any `json:"data"`
	IsPublished  bool           `json:"is_published,omitempty"`
	Order        *int           `json:"order,omitempty"`
}

// UpdateItemRequest mutates an existing item. A nil Data keeps the current
// payload; a non-nil one replaces it wholesale.
type UpdateItemRequest struct {
	ID          uuid.UUID      `json:"id"`
	Data        map[string]any `json:"data,omitempty"`
	IsPublished *bool          `json:"is_published,omitempty"`
	Order       *int           `json:"order,omitempty"`
}

// DeleteItemRequest removes an item.
type DeleteItemRequest struct {
	ID         uuid.UUID `json:"id"`
	HardDelete bool      `json:"hard_delete,omitempty"`
}
