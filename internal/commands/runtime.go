package commands

import (
	"context"
	"time"

	"github.com/compositor-cms/compositor/internal/logging"
	"github.com/compositor-cms/compositor/pkg/interfaces"
)

// DefaultCommandTimeout bounds handlers that do not set their own timeout.
const DefaultCommandTimeout = 30 * time.Second

// EnsureContext substitutes context.Background for a nil context.
func EnsureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithCommandTimeout wraps ctx with the timeout. Zero or negative timeouts
// leave the context untouched and return a no-op cancel.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureLogger substitutes the no-op logger for a nil one.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
