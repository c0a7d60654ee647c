package logging

import (
	"context"

	"github.com/compositor-cms/compositor/pkg/interfaces"
)

const (
	rootModule     = "compositor"
	schemaModule   = "compositor.schema"
	pagesModule    = "compositor.pages"
	contentModule  = "compositor.content"
	commandsModule = "compositor.commands"
	httpModule     = "compositor.http"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as structured context so downstream entries can be filtered.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// SchemaLogger returns the logger namespace reserved for the schema builder.
func SchemaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, schemaModule)
}

// PagesLogger returns the logger namespace reserved for page services.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

// ContentLogger returns the logger namespace reserved for collection items.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// CommandsLogger returns the logger namespace reserved for command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP surfaces.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
