package validation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrSnapshotInvalid  = errors.New("snapshot invalid")
)

// Issue captures a single validation failure for one field.
type Issue struct {
	Field   string
	Message string
}

// DataValidationError surfaces per-field violations from component data validation.
type DataValidationError struct {
	Issues []Issue
	Cause  error
}

func (e *DataValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		field := strings.TrimSpace(issue.Field)
		if field == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *DataValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Issues extracts per-field issues from an error.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var dataErr *DataValidationError
	if errors.As(err, &dataErr) && dataErr != nil {
		return dataErr.Issues
	}
	return []Issue{{Message: err.Error()}}
}
