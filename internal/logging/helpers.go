package logging

import (
	"maps"

	"github.com/compositor-cms/compositor/pkg/interfaces"
)

// WithFields returns a logger enriched with the given fields when the
// implementation supports interfaces.FieldsLogger, otherwise the logger is
// returned as-is. Nil loggers and empty maps pass through unchanged.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}

	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return fieldsLogger.WithFields(copied)
}
