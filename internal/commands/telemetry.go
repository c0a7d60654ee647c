package commands

import (
	"context"
	"time"

	"github.com/compositor-cms/compositor/internal/logging"
	"github.com/compositor-cms/compositor/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// TelemetryStatus classifies how a command run ended.
type TelemetryStatus string

const (
	// TelemetryStatusSuccess marks a run that returned no error.
	TelemetryStatusSuccess TelemetryStatus = "success"
	// TelemetryStatusFailed marks a run whose handler returned an error.
	TelemetryStatusFailed TelemetryStatus = "failed"
	// TelemetryStatusContextError marks a run cut short by context
	// cancellation or deadline.
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks after every command run.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is an optional per-command callback invoked after execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs each command outcome through the supplied logger.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(ctx context.Context, _ T, info TelemetryInfo) {
		entry := logger
		if info.Fields != nil {
			entry = logging.WithFields(entry, info.Fields)
		}
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}
