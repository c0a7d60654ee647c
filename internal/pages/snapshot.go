package pages

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/pages"
)

// buildSnapshot freezes the page's full state into the version payload.
// The components array is sorted by order, so snapshots from an in-memory
// page and from a reloaded one carry the same entry positions. Component
// entries carry the definition slug when it is loaded so restored history
// stays readable even if the definition is later renamed.
func buildSnapshot(page *pages.Page) map[string]any {
	ordered := make([]*pages.Component, len(page.Components))
	copy(ordered, page.Components)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Order < ordered[j].Order
	})

	components := make([]map[string]any, 0, len(ordered))
	for _, component := range ordered {
		entry := map[string]any{
			"component_id": component.ComponentID.String(),
			"data":         component.Data,
			"order":        component.Order,
		}
		if component.Definition != nil {
			entry["slug"] = component.Definition.Slug
		}
		components = append(components, entry)
	}

	snapshot := map[string]any{
		"title":       page.Title,
		"slug":        page.Slug,
		"is_homepage": page.IsHomepage,
		"status":      page.Status,
		"components":  components,
	}
	if page.PublishedAt != nil {
		snapshot["published_at"] = page.PublishedAt.UTC().Format(time.RFC3339)
	} else {
		snapshot["published_at"] = nil
	}
	return snapshot
}

// applySnapshot rewrites the page's attributes and component set from a
// stored snapshot. Values arrive as a plain JSON tree, so numbers may be
// float64 after a round trip through the store.
func applySnapshot(page *pages.Page, snapshot map[string]any, id IDGenerator, now time.Time) error {
	title, ok := snapshot["title"].(string)
	if !ok || title == "" {
		return pages.ErrSnapshotCorrupt
	}
	slug, ok := snapshot["slug"].(string)
	if !ok || slug == "" {
		return pages.ErrSnapshotCorrupt
	}

	page.Title = title
	page.Slug = slug
	if isHomepage, ok := snapshot["is_homepage"].(bool); ok {
		page.IsHomepage = isHomepage
	}
	if status, ok := snapshot["status"].(string); ok && pages.ValidStatus(status) {
		page.Status = status
	}

	page.PublishedAt = nil
	if raw, ok := snapshot["published_at"].(string); ok && raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			page.PublishedAt = &parsed
		}
	}

	components, err := componentsFromSnapshot(page.ID, snapshot["components"], id, now)
	if err != nil {
		return err
	}
	page.Components = components
	page.UpdatedAt = now
	return nil
}

func componentsFromSnapshot(pageID uuid.UUID, raw any, id IDGenerator, now time.Time) ([]*pages.Component, error) {
	entries, err := snapshotEntries(raw)
	if err != nil {
		return nil, err
	}

	components := make([]*pages.Component, 0, len(entries))
	for index, entry := range entries {
		rawID, ok := entry["component_id"].(string)
		if !ok {
			return nil, pages.ErrSnapshotCorrupt
		}
		componentID, parseErr := uuid.Parse(rawID)
		if parseErr != nil {
			return nil, pages.ErrSnapshotCorrupt
		}

		data, _ := entry["data"].(map[string]any)
		order := index
		switch typed := entry["order"].(type) {
		case int:
			order = typed
		case float64:
			order = int(typed)
		}

		components = append(components, &pages.Component{
			ID:          id(),
			PageID:      pageID,
			ComponentID: componentID,
			Data:        data,
			Order:       order,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return components, nil
}

// snapshotComponentSlugs extracts the frozen definition slug per component
// entry, index-aligned with componentsFromSnapshot. Entries without a slug
// yield "".
func snapshotComponentSlugs(raw any) []string {
	entries, err := snapshotEntries(raw)
	if err != nil {
		return nil
	}
	slugs := make([]string, len(entries))
	for index, entry := range entries {
		if slug, ok := entry["slug"].(string); ok {
			slugs[index] = slug
		}
	}
	return slugs
}

func snapshotEntries(raw any) ([]map[string]any, error) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return typed, nil
	case []any:
		entries := make([]map[string]any, 0, len(typed))
		for _, item := range typed {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, pages.ErrSnapshotCorrupt
			}
			entries = append(entries, entry)
		}
		return entries, nil
	default:
		return nil, pages.ErrSnapshotCorrupt
	}
}
