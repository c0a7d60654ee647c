package pages

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/pages"
)

// DefaultVersionRetention is how many versions are kept per page when no
// override is configured.
const DefaultVersionRetention = 5

// MemoryRepository is an in-memory Repository used by tests and by
// installations that run without a database.
type MemoryRepository struct {
	mu        sync.RWMutex
	pages     map[uuid.UUID]*pages.Page
	versions  map[uuid.UUID][]*pages.Version
	retention int
}

// MemoryOption customises the in-memory repository.
type MemoryOption func(*MemoryRepository)

// MemoryWithRetention overrides how many versions are kept per page.
// Zero or negative keeps every version.
func MemoryWithRetention(retention int) MemoryOption {
	return func(m *MemoryRepository) {
		m.retention = retention
	}
}

// NewMemoryRepository builds an empty in-memory repository.
func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	repo := &MemoryRepository{
		pages:     make(map[uuid.UUID]*pages.Page),
		versions:  make(map[uuid.UUID][]*pages.Version),
		retention: DefaultVersionRetention,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (m *MemoryRepository) Create(_ context.Context, page *pages.Page, version *pages.Version) (*pages.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkSlugIndex(page); err != nil {
		return nil, err
	}
	if page.IsHomepage {
		m.clearHomepage(page.ID)
	}

	stored := clonePage(page)
	m.pages[stored.ID] = stored
	m.appendVersion(stored.ID, version)
	return clonePage(stored), nil
}

func (m *MemoryRepository) Update(_ context.Context, page *pages.Page, replaceComponents bool, version *pages.Version) (*pages.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(page, replaceComponents, version)
}

func (m *MemoryRepository) Restore(_ context.Context, page *pages.Page, version *pages.Version) (*pages.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(page, true, version)
}

func (m *MemoryRepository) write(page *pages.Page, replaceComponents bool, version *pages.Version) (*pages.Page, error) {
	existing, ok := m.pages[page.ID]
	if !ok || existing.DeletedAt != nil {
		return nil, &pages.NotFoundError{Resource: "page", Key: page.ID.String()}
	}
	if err := m.checkSlugIndex(page); err != nil {
		return nil, err
	}
	if page.IsHomepage {
		m.clearHomepage(page.ID)
	}

	stored := clonePage(page)
	if !replaceComponents {
		stored.Components = cloneComponents(existing.Components)
	}
	stored.CreatedAt = existing.CreatedAt
	m.pages[stored.ID] = stored
	m.appendVersion(stored.ID, version)
	return clonePage(stored), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID, hard bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.pages[id]
	if !ok || existing.DeletedAt != nil {
		return &pages.NotFoundError{Resource: "page", Key: id.String()}
	}
	if hard {
		delete(m.pages, id)
		delete(m.versions, id)
		return nil
	}
	now := timeNow()
	existing.DeletedAt = &now
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*pages.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	existing, ok := m.pages[id]
	if !ok || existing.DeletedAt != nil {
		return nil, &pages.NotFoundError{Resource: "page", Key: id.String()}
	}
	return clonePage(existing), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, slug string) (*pages.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, page := range m.pages {
		if page.DeletedAt == nil && page.Slug == slug {
			return clonePage(page), nil
		}
	}
	return nil, &pages.NotFoundError{Resource: "page", Key: slug}
}

func (m *MemoryRepository) GetHomepage(_ context.Context) (*pages.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, page := range m.pages {
		if page.DeletedAt == nil && page.IsHomepage {
			return clonePage(page), nil
		}
	}
	return nil, &pages.NotFoundError{Resource: "homepage"}
}

func (m *MemoryRepository) List(_ context.Context) ([]*pages.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*pages.Page, 0, len(m.pages))
	for _, page := range m.pages {
		if page.DeletedAt == nil {
			out = append(out, clonePage(page))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *MemoryRepository) Search(_ context.Context, query string) ([]*pages.Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(query)
	out := make([]*pages.Page, 0)
	for _, page := range m.pages {
		if page.DeletedAt != nil {
			continue
		}
		if strings.Contains(strings.ToLower(page.Title), needle) ||
			strings.Contains(strings.ToLower(page.Slug), needle) {
			out = append(out, clonePage(page))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *MemoryRepository) ListSlugs(_ context.Context) (map[uuid.UUID]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[uuid.UUID]string, len(m.pages))
	for id, page := range m.pages {
		if page.DeletedAt == nil {
			out[id] = page.Slug
		}
	}
	return out, nil
}

func (m *MemoryRepository) ListVersions(_ context.Context, pageID uuid.UUID) ([]*pages.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if existing, ok := m.pages[pageID]; !ok || existing.DeletedAt != nil {
		return nil, &pages.NotFoundError{Resource: "page", Key: pageID.String()}
	}

	history := m.versions[pageID]
	out := make([]*pages.Version, 0, len(history))
	for _, version := range history {
		out = append(out, cloneVersion(version))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (m *MemoryRepository) GetVersion(_ context.Context, pageID uuid.UUID, number int) (*pages.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, version := range m.versions[pageID] {
		if version.Version == number {
			return cloneVersion(version), nil
		}
	}
	return nil, &pages.NotFoundError{Resource: "version", Key: strconv.Itoa(number)}
}

// appendVersion assigns the next sequence number, stores the version and
// prunes history beyond the retention window. Caller holds the lock.
func (m *MemoryRepository) appendVersion(pageID uuid.UUID, version *pages.Version) {
	if version == nil {
		return
	}
	stored := cloneVersion(version)
	stored.PageID = pageID
	stored.Version = m.nextVersionLocked(pageID)

	history := append(m.versions[pageID], stored)
	sort.Slice(history, func(i, j int) bool { return history[i].Version < history[j].Version })
	if m.retention > 0 && len(history) > m.retention {
		history = history[len(history)-m.retention:]
	}
	m.versions[pageID] = history
}

func (m *MemoryRepository) nextVersionLocked(pageID uuid.UUID) int {
	next := 1
	for _, version := range m.versions[pageID] {
		if version.Version >= next {
			next = version.Version + 1
		}
	}
	return next
}

func (m *MemoryRepository) checkSlugIndex(page *pages.Page) error {
	for id, existing := range m.pages {
		if id == page.ID || existing.DeletedAt != nil {
			continue
		}
		if existing.Slug == page.Slug {
			return &pages.ConflictError{Slug: page.Slug}
		}
	}
	return nil
}

func (m *MemoryRepository) clearHomepage(except uuid.UUID) {
	for id, existing := range m.pages {
		if id != except && existing.IsHomepage {
			existing.IsHomepage = false
		}
	}
}

func clonePage(page *pages.Page) *pages.Page {
	if page == nil {
		return nil
	}
	out := *page
	out.Components = cloneComponents(page.Components)
	return &out
}

func cloneComponents(components []*pages.Component) []*pages.Component {
	if components == nil {
		return nil
	}
	out := make([]*pages.Component, 0, len(components))
	for _, component := range components {
		copied := *component
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func cloneVersion(version *pages.Version) *pages.Version {
	if version == nil {
		return nil
	}
	out := *version
	return &out
}

func timeNow() time.Time {
	return time.Now().UTC()
}
