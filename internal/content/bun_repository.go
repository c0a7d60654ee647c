package content

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/compositor-cms/compositor/content"
)

// NewItemRepository builds the generic bun repository for collection items.
func NewItemRepository(db *bun.DB) repository.Repository[*content.Item] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*content.Item]{
		NewRecord: func() *content.Item { return &content.Item{} },
		GetID: func(item *content.Item) uuid.UUID {
			return item.ID
		},
		SetID: func(item *content.Item, id uuid.UUID) {
			item.ID = id
		},
		GetIdentifier: func() string {
			return ""
		},
		GetIdentifierValue: func(*content.Item) string {
			return ""
		},
	})
}

// BunItemRepository adapts the generic repository to the content Repository
// contract, with optional read-through caching.
type BunItemRepository struct {
	repo repository.Repository[*content.Item]
}

// NewBunItemRepository constructs an uncached item repository.
func NewBunItemRepository(db *bun.DB) *BunItemRepository {
	return NewBunItemRepositoryWithCache(db, nil, nil)
}

// NewBunItemRepositoryWithCache constructs an item repository with optional caching.
func NewBunItemRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunItemRepository {
	base := NewItemRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunItemRepository{repo: wrapped}
}

func (r *BunItemRepository) Create(ctx context.Context, item *content.Item) (*content.Item, error) {
	created, err := r.repo.Create(ctx, item)
	if err != nil {
		return nil, mapRepositoryError(err, "item", item.ID.String())
	}
	return created, nil
}

func (r *BunItemRepository) Update(ctx context.Context, item *content.Item) (*content.Item, error) {
	updated, err := r.repo.Update(ctx, item)
	if err != nil {
		return nil, mapRepositoryError(err, "item", item.ID.String())
	}
	return updated, nil
}

func (r *BunItemRepository) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	if hard {
		if err := r.repo.Delete(ctx, &content.Item{ID: id}); err != nil {
			return mapRepositoryError(err, "item", id.String())
		}
		return nil
	}

	item, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	now := timeNow()
	item.DeletedAt = &now
	if _, err := r.repo.Update(ctx, item); err != nil {
		return mapRepositoryError(err, "item", id.String())
	}
	return nil
}

func (r *BunItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*content.Item, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.id = ?", id).
				Where("?TableAlias.deleted_at IS NULL")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "item", id.String())
	}
	if len(records) == 0 {
		return nil, &content.NotFoundError{Resource: "item", Key: id.String()}
	}
	return records[0], nil
}

func (r *BunItemRepository) ListByCollection(ctx context.Context, collectionID uuid.UUID, publishedOnly bool) ([]*content.Item, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			q = q.Where("?TableAlias.collection_id = ?", collectionID).
				Where("?TableAlias.deleted_at IS NULL")
			if publishedOnly {
				q = q.Where("?TableAlias.is_published = ?", true)
			}
			return q.OrderExpr("?TableAlias.position ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "item", collectionID.String())
	}
	return records, nil
}

func (r *BunItemRepository) CountByCollection(ctx context.Context, collectionID uuid.UUID) (int, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.collection_id = ?", collectionID).
				Where("?TableAlias.deleted_at IS NULL")
		}),
	)
	if err != nil {
		return 0, mapRepositoryError(err, "item", collectionID.String())
	}
	return len(records), nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &content.NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

func timeNow() time.Time {
	return time.Now().UTC()
}
