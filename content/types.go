package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/compositor-cms/compositor/schema"
)

// Item is one entry inside a collection. Data is a freeform JSON map keyed
// by field slug: the owning collection's fields describe it for editing
// surfaces but do not gate writes, unlike page component data which is
// always validated against its component schema.
type Item struct {
	bun.BaseModel `bun:"table:collection_items,alias:ci"`

	ID           uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	CollectionID uuid.UUID      `bun:"collection_id,notnull,type:uuid" json:"collection_id"`
	Data         map[string]any `bun:"data,type:jsonb" json:"data"`
	IsPublished  bool           `bun:"is_published,notnull,default:false" json:"is_published"`
	Order        int            `bun:"position,notnull" json:"order"`
	DeletedAt    *time.Time     `bun:"deleted_at,nullzero" json:"deleted_at,omitempty"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Collection *schema.Schema `bun:"rel:belongs-to,join:collection_id=id" json:"collection,omitempty"`
}
