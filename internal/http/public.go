package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/compositor-cms/compositor/content"
	"github.com/compositor-cms/compositor/pages"
	"github.com/compositor-cms/compositor/schema"
)

// PublicAPI registers the headless read endpoints: published pages, active
// component definitions and published collection items.
type PublicAPI struct {
	basePath string
	schemas  schema.Service
	pages    pages.Service
	content  content.Service
}

// PublicOption mutates the PublicAPI configuration.
type PublicOption func(*PublicAPI)

// NewPublicAPI constructs a PublicAPI instance.
func NewPublicAPI(opts ...PublicOption) *PublicAPI {
	api := &PublicAPI{
		basePath: "/api",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// PublicWithBasePath overrides the base API path (defaults to "/api").
func PublicWithBasePath(path string) PublicOption {
	return func(api *PublicAPI) {
		if api == nil {
			return
		}
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// PublicWithSchemaService wires the schema service used for component and
// collection definitions.
func PublicWithSchemaService(service schema.Service) PublicOption {
	return func(api *PublicAPI) {
		if api != nil {
			api.schemas = service
		}
	}
}

// PublicWithPageService wires the page composition service.
func PublicWithPageService(service pages.Service) PublicOption {
	return func(api *PublicAPI) {
		if api != nil {
			api.pages = service
		}
	}
}

// PublicWithContentService wires the collection item service.
func PublicWithContentService(service content.Service) PublicOption {
	return func(api *PublicAPI) {
		if api != nil {
			api.content = service
		}
	}
}

// Register attaches the public endpoints to the provided mux.
func (api *PublicAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: public api is nil")
	}

	base := joinPath(api.basePath, "")

	mux.HandleFunc("GET "+base+"/pages", api.handlePublicPageList)
	mux.HandleFunc("GET "+base+"/pages/{slug}", api.handlePublicPageGet)
	mux.HandleFunc("GET "+base+"/homepage", api.handlePublicHomepage)
	mux.HandleFunc("GET "+base+"/components", api.handlePublicComponentList)
	mux.HandleFunc("GET "+base+"/collections/{slug}", api.handlePublicCollectionGet)
	mux.HandleFunc("GET "+base+"/collections/{slug}/items", api.handlePublicCollectionItems)

	return nil
}

func (api *PublicAPI) handlePublicPageList(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	records, err := api.pages.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	published := make([]*pages.Page, 0, len(records))
	for _, record := range records {
		if record != nil && record.Status == pages.StatusPublished {
			published = append(published, record)
		}
	}

	writeJSON(w, http.StatusOK, published)
}

func (api *PublicAPI) handlePublicPageGet(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	slug := r.PathValue("slug")

	record, err := api.pages.GetBySlug(r.Context(), slug)
	if err != nil {
		writeError(w, err)
		return
	}
	if record.Status != pages.StatusPublished {
		// Drafts and archived pages stay invisible on the read surface.
		writeError(w, &pages.NotFoundError{Resource: "page", Key: slug})
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (api *PublicAPI) handlePublicHomepage(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	record, err := api.pages.GetHomepage(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if record.Status != pages.StatusPublished {
		writeError(w, &pages.NotFoundError{Resource: "homepage", Key: "homepage"})
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (api *PublicAPI) handlePublicComponentList(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.schemas == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	records, err := api.schemas.List(r.Context(), schema.KindComponent)
	if err != nil {
		writeError(w, err)
		return
	}

	active := make([]*schema.Schema, 0, len(records))
	for _, record := range records {
		if record != nil && record.IsActive {
			active = append(active, record)
		}
	}

	writeJSON(w, http.StatusOK, active)
}

// collectionPayload bundles a collection definition with its published items
// so front-ends resolve a slug in a single round trip.
type collectionPayload struct {
	Collection *schema.Schema  `json:"collection"`
	Items      []*content.Item `json:"items"`
}

func (api *PublicAPI) handlePublicCollectionGet(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.schemas == nil || api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	slug := r.PathValue("slug")

	record, err := api.schemas.GetBySlug(r.Context(), schema.KindCollection, slug)
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := api.content.ListPublished(r.Context(), record.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, collectionPayload{Collection: record, Items: items})
}

func (api *PublicAPI) handlePublicCollectionItems(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.schemas == nil || api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}

	slug := r.PathValue("slug")

	record, err := api.schemas.GetBySlug(r.Context(), schema.KindCollection, slug)
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := api.content.ListPublished(r.Context(), record.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}
