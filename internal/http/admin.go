package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/compositor-cms/compositor/content"
	"github.com/compositor-cms/compositor/pages"
	"github.com/compositor-cms/compositor/schema"
)

// AdminAPI registers the builder endpoints: schema definitions, page
// composition, versioning and collection items.
type AdminAPI struct {
	basePath string
	schemas  schema.Service
	pages    pages.Service
	content  content.Service
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: "/admin/api",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if api == nil {
			return
		}
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithSchemaService wires the schema builder service.
func WithSchemaService(service schema.Service) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.schemas = service
		}
	}
}

// WithPageService wires the page composition service.
func WithPageService(service pages.Service) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.pages = service
		}
	}
}

// WithContentService wires the collection item service.
func WithContentService(service content.Service) AdminOption {
	return func(api *AdminAPI) {
		if api != nil {
			api.content = service
		}
	}
}

// Register attaches the admin endpoints to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil {
		return fmt.Errorf("http: admin api is nil")
	}

	base := joinPath(api.basePath, "")

	api.registerSchemaRoutes(mux, base)
	api.registerPageRoutes(mux, base)
	api.registerItemRoutes(mux, base)

	return nil
}
