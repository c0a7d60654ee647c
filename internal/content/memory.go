package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/content"
)

// MemoryRepository is an in-memory Repository used by tests and by
// installations that run without a database.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*content.Item
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]*content.Item)}
}

func (m *MemoryRepository) Create(_ context.Context, item *content.Item) (*content.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneItem(item)
	m.items[stored.ID] = stored
	return cloneItem(stored), nil
}

func (m *MemoryRepository) Update(_ context.Context, item *content.Item) (*content.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[item.ID]
	if !ok || existing.DeletedAt != nil {
		return nil, &content.NotFoundError{Resource: "item", Key: item.ID.String()}
	}

	stored := cloneItem(item)
	stored.CreatedAt = existing.CreatedAt
	m.items[stored.ID] = stored
	return cloneItem(stored), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID, hard bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[id]
	if !ok || existing.DeletedAt != nil {
		return &content.NotFoundError{Resource: "item", Key: id.String()}
	}
	if hard {
		delete(m.items, id)
		return nil
	}
	now := time.Now().UTC()
	existing.DeletedAt = &now
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*content.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	existing, ok := m.items[id]
	if !ok || existing.DeletedAt != nil {
		return nil, &content.NotFoundError{Resource: "item", Key: id.String()}
	}
	return cloneItem(existing), nil
}

func (m *MemoryRepository) ListByCollection(_ context.Context, collectionID uuid.UUID, publishedOnly bool) ([]*content.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*content.Item, 0)
	for _, item := range m.items {
		if item.DeletedAt != nil || item.CollectionID != collectionID {
			continue
		}
		if publishedOnly && !item.IsPublished {
			continue
		}
		out = append(out, cloneItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (m *MemoryRepository) CountByCollection(_ context.Context, collectionID uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, item := range m.items {
		if item.DeletedAt == nil && item.CollectionID == collectionID {
			count++
		}
	}
	return count, nil
}

func cloneItem(item *content.Item) *content.Item {
	if item == nil {
		return nil
	}
	out := *item
	if item.Data != nil {
		data := make(map[string]any, len(item.Data))
		for key, value := range item.Data {
			data[key] = value
		}
		out.Data = data
	}
	return &out
}
