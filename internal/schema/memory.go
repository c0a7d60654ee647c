package schema

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/schema"
)

func timeNow() time.Time { return time.Now().UTC() }

// MemoryRepository is an in-memory implementation for scaffolding and tests.
// It mirrors the store contract including the (kind, slug) unique index.
type MemoryRepository struct {
	mu      sync.RWMutex
	schemas map[uuid.UUID]*schema.Schema
}

// NewMemoryRepository creates an empty in-memory schema repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		schemas: make(map[uuid.UUID]*schema.Schema),
	}
}

var _ Repository = (*MemoryRepository)(nil)

func (m *MemoryRepository) Create(_ context.Context, record *schema.Schema) (*schema.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkSlugIndex(record); err != nil {
		return nil, err
	}
	copied := cloneSchema(record)
	m.schemas[copied.ID] = copied
	return cloneSchema(copied), nil
}

func (m *MemoryRepository) Update(_ context.Context, record *schema.Schema) (*schema.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.schemas[record.ID]
	if !ok || existing.DeletedAt != nil {
		return nil, &schema.NotFoundError{Kind: record.Kind, Key: record.ID.String()}
	}
	if err := m.checkSlugIndex(record); err != nil {
		return nil, err
	}
	copied := cloneSchema(record)
	m.schemas[copied.ID] = copied
	return cloneSchema(copied), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID, hardDelete bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.schemas[id]
	if !ok || existing.DeletedAt != nil {
		return &schema.NotFoundError{Key: id.String()}
	}
	if hardDelete {
		delete(m.schemas, id)
		return nil
	}
	now := timeNow()
	existing.DeletedAt = &now
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*schema.Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.schemas[id]
	if !ok || record.DeletedAt != nil {
		return nil, &schema.NotFoundError{Key: id.String()}
	}
	return cloneSchema(record), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, kind schema.Kind, slug string) (*schema.Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, record := range m.schemas {
		if record.DeletedAt == nil && record.Kind == kind && record.Slug == slug {
			return cloneSchema(record), nil
		}
	}
	return nil, &schema.NotFoundError{Kind: kind, Key: slug}
}

func (m *MemoryRepository) List(_ context.Context, kind schema.Kind) ([]*schema.Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*schema.Schema, 0, len(m.schemas))
	for _, record := range m.schemas {
		if record.DeletedAt == nil && record.Kind == kind {
			out = append(out, cloneSchema(record))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *MemoryRepository) Search(ctx context.Context, kind schema.Kind, query string) ([]*schema.Schema, error) {
	records, err := m.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := make([]*schema.Schema, 0, len(records))
	for _, record := range records {
		if strings.Contains(strings.ToLower(record.Name), needle) ||
			strings.Contains(strings.ToLower(record.Slug), needle) {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *MemoryRepository) ListSlugs(_ context.Context, kind schema.Kind) (map[uuid.UUID]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[uuid.UUID]string)
	for id, record := range m.schemas {
		if record.DeletedAt == nil && record.Kind == kind {
			out[id] = record.Slug
		}
	}
	return out, nil
}

// checkSlugIndex emulates the store-level unique index on (kind, slug).
func (m *MemoryRepository) checkSlugIndex(record *schema.Schema) error {
	for id, existing := range m.schemas {
		if id == record.ID || existing.DeletedAt != nil {
			continue
		}
		if existing.Kind == record.Kind && existing.Slug == record.Slug {
			return &schema.ConflictError{Kind: record.Kind, Slug: record.Slug}
		}
	}
	return nil
}

func cloneSchema(src *schema.Schema) *schema.Schema {
	if src == nil {
		return nil
	}
	copied := *src
	if len(src.Fields) > 0 {
		copied.Fields = make([]*schema.Field, len(src.Fields))
		for i, field := range src.Fields {
			if field == nil {
				continue
			}
			local := *field
			local.Config = cloneMap(field.Config)
			copied.Fields[i] = &local
		}
		sort.SliceStable(copied.Fields, func(i, j int) bool {
			return copied.Fields[i].Order < copied.Fields[j].Order
		})
	}
	return &copied
}
