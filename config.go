package compositor

import "github.com/compositor-cms/compositor/internal/runtimeconfig"

var (
	ErrStorageProviderUnknown       = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown         = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired           = runtimeconfig.ErrStorageDSNRequired
	ErrVersionRetentionLimitInvalid = runtimeconfig.ErrVersionRetentionLimitInvalid
	ErrCacheRequiresDatabase        = runtimeconfig.ErrCacheRequiresDatabase
	ErrLoggingProviderRequired      = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown       = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid          = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid         = runtimeconfig.ErrLoggingFormatInvalid
	ErrComponentNameRequired        = runtimeconfig.ErrComponentNameRequired
	ErrComponentFieldInvalid        = runtimeconfig.ErrComponentFieldInvalid
)

type (
	Config                    = runtimeconfig.Config
	StorageConfig             = runtimeconfig.StorageConfig
	CacheConfig               = runtimeconfig.CacheConfig
	RetentionConfig           = runtimeconfig.RetentionConfig
	Features                  = runtimeconfig.Features
	LoggingConfig             = runtimeconfig.LoggingConfig
	ComponentDefinitionConfig = runtimeconfig.ComponentDefinitionConfig
	ComponentFieldConfig      = runtimeconfig.ComponentFieldConfig
)

// DefaultPageRetention is the version window applied when the host does not
// configure one.
const DefaultPageRetention = runtimeconfig.DefaultPageRetention

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
