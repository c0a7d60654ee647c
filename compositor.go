package compositor

import (
	"context"
	"net/http"

	"github.com/compositor-cms/compositor/content"
	"github.com/compositor-cms/compositor/internal/di"
	compositorhttp "github.com/compositor-cms/compositor/internal/http"
	"github.com/compositor-cms/compositor/pages"
	"github.com/compositor-cms/compositor/pkg/interfaces"
	"github.com/compositor-cms/compositor/schema"
)

// SchemaService exports the schema builder contract for consumers of the
// compositor package.
type SchemaService = schema.Service

// PageService exports the page composition and versioning contract.
type PageService = pages.Service

// ContentService exports the collection item contract.
type ContentService = content.Service

// Module represents the top level compositor runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a compositor module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Start runs startup work: seeding configured component definitions. It is
// idempotent and safe to call on every boot.
func (m *Module) Start(ctx context.Context) error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.InitializeComponents(ctx)
}

// Close releases resources owned by the module, such as self-opened
// database handles.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Schemas returns the configured schema builder service.
func (m *Module) Schemas() SchemaService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.SchemaService()
}

// Pages returns the configured page service.
func (m *Module) Pages() PageService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.PageService()
}

// Content returns the configured collection item service.
func (m *Module) Content() ContentService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ContentService()
}

// LoggerProvider returns the logger provider wired into the module.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.LoggerProvider()
}

// RegisterAdminRoutes attaches the builder endpoints to the mux under
// /admin/api.
func (m *Module) RegisterAdminRoutes(mux *http.ServeMux, opts ...compositorhttp.AdminOption) error {
	api := compositorhttp.NewAdminAPI(append([]compositorhttp.AdminOption{
		compositorhttp.WithSchemaService(m.Schemas()),
		compositorhttp.WithPageService(m.Pages()),
		compositorhttp.WithContentService(m.Content()),
	}, opts...)...)
	return api.Register(mux)
}

// RegisterPublicRoutes attaches the headless read endpoints to the mux under
// /api. Registration is a no-op when the headless API feature is disabled.
func (m *Module) RegisterPublicRoutes(mux *http.ServeMux, opts ...compositorhttp.PublicOption) error {
	if m == nil || m.container == nil {
		return nil
	}
	if !m.container.Config.Features.HeadlessAPI {
		return nil
	}
	api := compositorhttp.NewPublicAPI(append([]compositorhttp.PublicOption{
		compositorhttp.PublicWithSchemaService(m.Schemas()),
		compositorhttp.PublicWithPageService(m.Pages()),
		compositorhttp.PublicWithContentService(m.Content()),
	}, opts...)...)
	return api.Register(mux)
}
