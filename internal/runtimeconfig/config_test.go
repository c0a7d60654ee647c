package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/compositor-cms/compositor/internal/runtimeconfig"
)

func TestConfigValidate_DefaultsAreValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RejectsUnknownStorageProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "redis"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrStorageProviderUnknown) {
		t.Fatalf("expected ErrStorageProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RequiresDSNForDatabaseStorage(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = " "

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownDriver(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = "bun"
	cfg.Storage.Driver = "oracle"
	cfg.Storage.DSN = "file::memory:"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

func TestConfigValidate_CacheRequiresDatabaseStorage(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Enabled = true

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrCacheRequiresDatabase) {
		t.Fatalf("expected ErrCacheRequiresDatabase, got %v", err)
	}
}

func TestConfigValidate_RejectsNegativeRetention(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Retention.Pages = -1

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrVersionRetentionLimitInvalid) {
		t.Fatalf("expected ErrVersionRetentionLimitInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsBootstrapComponentWithoutName(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Components = []runtimeconfig.ComponentDefinitionConfig{{Name: "  "}}

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrComponentNameRequired) {
		t.Fatalf("expected ErrComponentNameRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsBootstrapFieldWithoutDataType(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Components = []runtimeconfig.ComponentDefinitionConfig{{
		Name:   "Hero",
		Fields: []runtimeconfig.ComponentFieldConfig{{Name: "Heading"}},
	}}

	err := cfg.Validate()
	if !errors.Is(err, runtimeconfig.ErrComponentFieldInvalid) {
		t.Fatalf("expected ErrComponentFieldInvalid, got %v", err)
	}
}
