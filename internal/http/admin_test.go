package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/compositor-cms/compositor/content"
	contentsvc "github.com/compositor-cms/compositor/internal/content"
	pagessvc "github.com/compositor-cms/compositor/internal/pages"
	schemasvc "github.com/compositor-cms/compositor/internal/schema"
	"github.com/compositor-cms/compositor/pages"
	"github.com/compositor-cms/compositor/schema"
	"github.com/google/uuid"
)

func TestAdminAPI_ComponentLifecycle(t *testing.T) {
	mux, _ := setupAdminAPI(t)

	createBody := map[string]any{
		"name": "Hero Banner",
		"fields": []map[string]any{
			{"name": "Heading", "data_type": "short_text", "is_required": true},
			{"name": "Subheading", "data_type": "text"},
		},
	}
	createResp := doJSONRequest(t, mux, http.MethodPost, "/admin/api/components", createBody, http.StatusCreated)

	var created schema.Schema
	decodeJSONBody(t, createResp, &created)
	if created.ID == uuid.Nil {
		t.Fatalf("expected created component id")
	}
	if created.Slug != "hero-banner" {
		t.Fatalf("expected slug hero-banner got %q", created.Slug)
	}
	if len(created.Fields) != 2 {
		t.Fatalf("expected 2 fields got %d", len(created.Fields))
	}

	listResp := doJSONRequest(t, mux, http.MethodGet, "/admin/api/components", nil, http.StatusOK)
	var list []*schema.Schema
	decodeJSONBody(t, listResp, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 component got %d", len(list))
	}

	getPath := "/admin/api/components/" + created.ID.String()
	getResp := doJSONRequest(t, mux, http.MethodGet, getPath, nil, http.StatusOK)
	var fetched schema.Schema
	decodeJSONBody(t, getResp, &fetched)
	if fetched.ID != created.ID {
		t.Fatalf("expected fetched id %s got %s", created.ID, fetched.ID)
	}

	slugResp := doJSONRequest(t, mux, http.MethodGet, "/admin/api/components/slug/hero-banner", nil, http.StatusOK)
	var bySlug schema.Schema
	decodeJSONBody(t, slugResp, &bySlug)
	if bySlug.ID != created.ID {
		t.Fatalf("expected slug lookup id %s got %s", created.ID, bySlug.ID)
	}

	updateBody := map[string]any{
		"description": "Primary hero section",
	}
	updateResp := doJSONRequest(t, mux, http.MethodPut, getPath, updateBody, http.StatusOK)
	var updated schema.Schema
	decodeJSONBody(t, updateResp, &updated)
	if updated.Description == nil || *updated.Description != "Primary hero section" {
		t.Fatalf("expected updated description")
	}

	doJSONRequest(t, mux, http.MethodDelete, getPath, map[string]any{"hard_delete": true}, http.StatusNoContent)
	doJSONRequest(t, mux, http.MethodGet, getPath, nil, http.StatusNotFound)
}

func TestAdminAPI_KindScoping(t *testing.T) {
	mux, _ := setupAdminAPI(t)

	createResp := doJSONRequest(t, mux, http.MethodPost, "/admin/api/components", map[string]any{
		"name": "Hero",
	}, http.StatusCreated)
	var component schema.Schema
	decodeJSONBody(t, createResp, &component)

	// Component IDs resolve on the component routes only.
	doJSONRequest(t, mux, http.MethodGet, "/admin/api/collections/"+component.ID.String(), nil, http.StatusNotFound)
	doJSONRequest(t, mux, http.MethodGet, "/admin/api/components/"+component.ID.String(), nil, http.StatusOK)
}

func TestAdminAPI_DuplicateSlugAutoSuffixes(t *testing.T) {
	mux, _ := setupAdminAPI(t)

	body := map[string]any{"name": "Article", "slug": "article"}
	doJSONRequest(t, mux, http.MethodPost, "/admin/api/collections", body, http.StatusCreated)

	resp := doJSONRequest(t, mux, http.MethodPost, "/admin/api/collections", body, http.StatusCreated)
	var second schema.Schema
	decodeJSONBody(t, resp, &second)
	if second.Slug != "article-1" {
		t.Fatalf("expected suffixed slug article-1 got %q", second.Slug)
	}
}

func TestAdminAPI_PageLifecycleWithComponents(t *testing.T) {
	mux, _ := setupAdminAPI(t)

	heroResp := doJSONRequest(t, mux, http.MethodPost, "/admin/api/components", map[string]any{
		"name": "Hero",
		"fields": []map[string]any{
			{"name": "Heading", "data_type": "short_text", "is_required": true},
		},
	}, http.StatusCreated)
	var hero schema.Schema
	decodeJSONBody(t, heroResp, &hero)

	pageResp := doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages", map[string]any{
		"title": "Landing",
		"components": []map[string]any{
			{
				"component_id": hero.ID.String(),
				"data":         map[string]any{"heading": "Welcome"},
			},
		},
	}, http.StatusCreated)
	var page pages.Page
	decodeJSONBody(t, pageResp, &page)
	if page.Slug != "landing" {
		t.Fatalf("expected slug landing got %q", page.Slug)
	}
	if page.Status != pages.StatusDraft {
		t.Fatalf("expected draft status got %q", page.Status)
	}
	if len(page.Components) != 1 {
		t.Fatalf("expected 1 component instance got %d", len(page.Components))
	}

	// Missing required component data fails schema validation.
	invalidResp := doJSONRequest(t, mux, http.MethodPut, "/admin/api/pages/"+page.ID.String()+"/components", map[string]any{
		"components": []map[string]any{
			{"component_id": hero.ID.String(), "data": map[string]any{}},
		},
	}, http.StatusUnprocessableEntity)
	var invalid map[string]any
	decodeJSONBody(t, invalidResp, &invalid)
	if invalid["error"] != "validation_failed" {
		t.Fatalf("expected validation_failed got %v", invalid["error"])
	}

	publish := pages.StatusPublished
	updateResp := doJSONRequest(t, mux, http.MethodPut, "/admin/api/pages/"+page.ID.String(), map[string]any{
		"status": publish,
	}, http.StatusOK)
	var published pages.Page
	decodeJSONBody(t, updateResp, &published)
	if published.Status != pages.StatusPublished {
		t.Fatalf("expected published status got %q", published.Status)
	}
	if published.PublishedAt == nil {
		t.Fatalf("expected published_at to be stamped")
	}
}

func TestAdminAPI_PageVersionRoutes(t *testing.T) {
	mux, _ := setupAdminAPI(t)

	pageResp := doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages", map[string]any{
		"title": "About",
	}, http.StatusCreated)
	var page pages.Page
	decodeJSONBody(t, pageResp, &page)

	doJSONRequest(t, mux, http.MethodPut, "/admin/api/pages/"+page.ID.String(), map[string]any{
		"title": "About Us",
	}, http.StatusOK)

	versionsResp := doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages/"+page.ID.String()+"/versions", nil, http.StatusOK)
	var versions []*pages.Version
	decodeJSONBody(t, versionsResp, &versions)
	if len(versions) < 2 {
		t.Fatalf("expected at least 2 versions got %d", len(versions))
	}

	versionResp := doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages/"+page.ID.String()+"/versions/1", nil, http.StatusOK)
	var version pages.Version
	decodeJSONBody(t, versionResp, &version)
	if version.Version != 1 {
		t.Fatalf("expected version 1 got %d", version.Version)
	}

	diffResp := doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages/"+page.ID.String()+"/versions/diff?from=1&to=2", nil, http.StatusOK)
	var diff pages.VersionDiff
	decodeJSONBody(t, diffResp, &diff)
	if len(diff.Changes) == 0 {
		t.Fatalf("expected diff changes")
	}

	restoreResp := doJSONRequest(t, mux, http.MethodPost, "/admin/api/pages/"+page.ID.String()+"/versions/1/restore", map[string]any{}, http.StatusOK)
	var restored pages.Page
	decodeJSONBody(t, restoreResp, &restored)
	if restored.Title != "About" {
		t.Fatalf("expected restored title About got %q", restored.Title)
	}

	doJSONRequest(t, mux, http.MethodGet, "/admin/api/pages/"+page.ID.String()+"/versions/99", nil, http.StatusNotFound)
}

func TestAdminAPI_ItemLifecycle(t *testing.T) {
	mux, _ := setupAdminAPI(t)

	collectionResp := doJSONRequest(t, mux, http.MethodPost, "/admin/api/collections", map[string]any{
		"name": "Posts",
	}, http.StatusCreated)
	var collection schema.Schema
	decodeJSONBody(t, collectionResp, &collection)

	itemResp := doJSONRequest(t, mux, http.MethodPost, "/admin/api/collections/"+collection.ID.String()+"/items", map[string]any{
		"data":         map[string]any{"title": "First Post"},
		"is_published": true,
	}, http.StatusCreated)
	var item content.Item
	decodeJSONBody(t, itemResp, &item)
	if item.ID == uuid.Nil {
		t.Fatalf("expected item id")
	}
	if item.CollectionID != collection.ID {
		t.Fatalf("expected item collection %s got %s", collection.ID, item.CollectionID)
	}

	listResp := doJSONRequest(t, mux, http.MethodGet, "/admin/api/collections/"+collection.ID.String()+"/items", nil, http.StatusOK)
	var items []*content.Item
	decodeJSONBody(t, listResp, &items)
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}

	itemPath := "/admin/api/items/" + item.ID.String()
	updateResp := doJSONRequest(t, mux, http.MethodPut, itemPath, map[string]any{
		"data": map[string]any{"title": "Edited Post"},
	}, http.StatusOK)
	var updated content.Item
	decodeJSONBody(t, updateResp, &updated)
	if updated.Data["title"] != "Edited Post" {
		t.Fatalf("expected edited title got %v", updated.Data["title"])
	}

	doJSONRequest(t, mux, http.MethodDelete, itemPath, nil, http.StatusNoContent)
	doJSONRequest(t, mux, http.MethodGet, itemPath, nil, http.StatusNotFound)
}

type testServices struct {
	schemaSvc  schema.Service
	pageSvc    pages.Service
	contentSvc content.Service
}

func newTestServices() testServices {
	schemaSvc := schemasvc.NewService(schemasvc.NewMemoryRepository())
	pageSvc := pagessvc.NewService(pagessvc.NewMemoryRepository(), schemaSvc)
	contentSvc := contentsvc.NewService(contentsvc.NewMemoryRepository(), schemaSvc)
	return testServices{schemaSvc: schemaSvc, pageSvc: pageSvc, contentSvc: contentSvc}
}

func setupAdminAPI(t *testing.T) (*http.ServeMux, testServices) {
	t.Helper()

	services := newTestServices()

	api := NewAdminAPI(
		WithSchemaService(services.schemaSvc),
		WithPageService(services.pageSvc),
		WithContentService(services.contentSvc),
	)
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		t.Fatalf("register api: %v", err)
	}
	return mux, services
}

func doJSONRequest(t *testing.T, mux *http.ServeMux, method, path string, body any, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("expected status %d got %d (%s)", wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
