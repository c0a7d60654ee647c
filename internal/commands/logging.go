package commands

import (
	"strings"

	"github.com/compositor-cms/compositor/internal/logging"
	"github.com/compositor-cms/compositor/pkg/interfaces"
)

const commandModuleRoot = "compositor.commands"

// CommandLogger returns a module-scoped logger for command handlers, enriching it
// with consistent structured fields so command executions can be traced per module.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
