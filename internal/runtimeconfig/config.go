package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrStorageProviderUnknown       = errors.New("compositor config: storage provider is invalid")
	ErrStorageDriverUnknown         = errors.New("compositor config: storage driver is invalid")
	ErrStorageDSNRequired           = errors.New("compositor config: storage dsn is required for database storage")
	ErrVersionRetentionLimitInvalid = errors.New("compositor config: version retention limit must be zero or positive")
	ErrCacheRequiresDatabase        = errors.New("compositor config: repository cache requires database storage")
	ErrLoggingProviderRequired      = errors.New("compositor config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown       = errors.New("compositor config: logging provider is invalid")
	ErrLoggingLevelInvalid          = errors.New("compositor config: logging level is invalid")
	ErrLoggingFormatInvalid         = errors.New("compositor config: logging format is invalid")
	ErrComponentNameRequired        = errors.New("compositor config: bootstrap component name is required")
	ErrComponentFieldInvalid        = errors.New("compositor config: bootstrap component field requires name and data type")
)

// Config aggregates feature flags and adapter bindings for the module.
// Fields intentionally use simple types so host applications can extend
// them later.
type Config struct {
	Enabled    bool
	Storage    StorageConfig
	Cache      CacheConfig
	Retention  RetentionConfig
	Features   Features
	Logging    LoggingConfig
	Components []ComponentDefinitionConfig
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Provider is "memory" or "bun".
	Provider string
	// Driver selects the SQL driver when Provider is "bun": "sqlite" or
	// "postgres".
	Driver string
	DSN    string
}

// CacheConfig captures repository cache behaviour.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// RetentionConfig captures version retention limits. Zero keeps every
// version.
type RetentionConfig struct {
	Pages int
}

// Features toggles module functionality.
type Features struct {
	Versioning  bool
	HeadlessAPI bool
	Logger      bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
}

// ComponentDefinitionConfig seeds a component schema at startup.
type ComponentDefinitionConfig struct {
	Name        string
	Slug        string
	Description string
	Fields      []ComponentFieldConfig
}

// ComponentFieldConfig is one field of a seeded component definition.
type ComponentFieldConfig struct {
	Name       string
	Slug       string
	DataType   string
	Config     map[string]any
	IsRequired bool
	Order      *int
}

// DefaultPageRetention is the version window applied when the host does
// not configure one.
const DefaultPageRetention = 5

// DefaultConfig returns opinionated defaults: in-memory storage, versioning
// on, a five-entry version window and console logging.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Retention: RetentionConfig{
			Pages: DefaultPageRetention,
		},
		Features: Features{
			Versioning:  true,
			HeadlessAPI: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	provider := strings.ToLower(strings.TrimSpace(cfg.Storage.Provider))
	switch provider {
	case "", "memory":
	case "bun":
		driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
		switch driver {
		case "sqlite", "postgres":
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Cache.Enabled && provider != "bun" {
		return ErrCacheRequiresDatabase
	}

	if cfg.Retention.Pages < 0 {
		return fmt.Errorf("%w: pages", ErrVersionRetentionLimitInvalid)
	}

	if cfg.Features.Logger {
		logProvider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
		if logProvider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(logProvider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if logProvider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}

	for _, component := range cfg.Components {
		if strings.TrimSpace(component.Name) == "" {
			return ErrComponentNameRequired
		}
		for _, field := range component.Fields {
			if strings.TrimSpace(field.Name) == "" || strings.TrimSpace(field.DataType) == "" {
				return fmt.Errorf("%w: component %s", ErrComponentFieldInvalid, component.Name)
			}
		}
	}

	return nil
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
