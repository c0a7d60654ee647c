package di

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/compositor-cms/compositor/content"
	contentsvc "github.com/compositor-cms/compositor/internal/content"
	"github.com/compositor-cms/compositor/internal/logging"
	"github.com/compositor-cms/compositor/internal/logging/console"
	"github.com/compositor-cms/compositor/internal/logging/gologger"
	pagessvc "github.com/compositor-cms/compositor/internal/pages"
	"github.com/compositor-cms/compositor/internal/runtimeconfig"
	schemasvc "github.com/compositor-cms/compositor/internal/schema"
	"github.com/compositor-cms/compositor/pages"
	"github.com/compositor-cms/compositor/pkg/interfaces"
	"github.com/compositor-cms/compositor/schema"
	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Container wires module dependencies according to the runtime configuration.
// Memory repositories are the default; a bun.DB switches every repository to
// its SQL implementation.
type Container struct {
	Config runtimeconfig.Config

	bunDB    *bun.DB
	ownsDB   bool
	cacheTTL time.Duration

	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider

	schemaRepo schemasvc.Repository
	pageRepo   pagessvc.Repository
	itemRepo   contentsvc.Repository

	schemaSvc  schema.Service
	pageSvc    pages.Service
	contentSvc content.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB injects an externally managed database handle. The container
// will not close injected handles.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default repository cache bindings.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the logger provider resolved from configuration.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithSchemaService overrides the default schema service binding.
func WithSchemaService(svc schema.Service) Option {
	return func(c *Container) {
		c.schemaSvc = svc
	}
}

// WithPageService overrides the default page service binding.
func WithPageService(svc pages.Service) Option {
	return func(c *Container) {
		c.pageSvc = svc
	}
}

// WithContentService overrides the default content service binding.
func WithContentService(svc content.Service) Option {
	return func(c *Container) {
		c.contentSvc = svc
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:     cfg,
		cacheTTL:   cacheTTL,
		schemaRepo: schemasvc.NewMemoryRepository(),
		pageRepo:   pagessvc.NewMemoryRepository(pagessvc.MemoryWithRetention(cfg.Retention.Pages)),
		itemRepo:   contentsvc.NewMemoryRepository(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureServices()

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		minLevel := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &minLevel})
	}
	return nil
}

func (c *Container) configureStorage() error {
	provider := strings.ToLower(strings.TrimSpace(c.Config.Storage.Provider))
	if provider != "bun" || c.bunDB != nil {
		return nil
	}

	driver := strings.ToLower(strings.TrimSpace(c.Config.Storage.Driver))
	switch driver {
	case "", "sqlite", "sqlite3":
		sqlDB, err := sql.Open("sqlite3", c.Config.Storage.DSN)
		if err != nil {
			return fmt.Errorf("open sqlite storage: %w", err)
		}
		c.bunDB = bun.NewDB(sqlDB, sqlitedialect.New())
	case "postgres":
		sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(c.Config.Storage.DSN)))
		c.bunDB = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Config.Storage.Driver)
	}
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}

	c.schemaRepo = schemasvc.NewBunRepository(c.bunDB)
	c.pageRepo = pagessvc.NewBunRepository(c.bunDB, pagessvc.BunWithRetention(c.Config.Retention.Pages))
	c.itemRepo = contentsvc.NewBunItemRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
}

func (c *Container) configureServices() {
	if c.schemaSvc == nil {
		c.schemaSvc = schemasvc.NewService(
			c.schemaRepo,
			schemasvc.WithLogger(logging.SchemaLogger(c.loggerProvider)),
		)
	}

	if c.pageSvc == nil {
		c.pageSvc = pagessvc.NewService(
			c.pageRepo,
			c.schemaSvc,
			pagessvc.WithLogger(logging.PagesLogger(c.loggerProvider)),
			pagessvc.WithVersioning(c.Config.Features.Versioning),
		)
	}

	if c.contentSvc == nil {
		c.contentSvc = contentsvc.NewService(
			c.itemRepo,
			c.schemaSvc,
			contentsvc.WithLogger(logging.ContentLogger(c.loggerProvider)),
		)
	}
}

// Close releases resources owned by the container. Injected database handles
// are left open for their owners.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	return c.bunDB.Close()
}

// DB exposes the configured database handle, nil for memory storage.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// LoggerProvider exposes the resolved logger provider, nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// SchemaService returns the configured schema service.
func (c *Container) SchemaService() schema.Service {
	return c.schemaSvc
}

// PageService returns the configured page service.
func (c *Container) PageService() pages.Service {
	return c.pageSvc
}

// ContentService returns the configured content service.
func (c *Container) ContentService() content.Service {
	return c.contentSvc
}
