package validation

import (
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// snapshotSchema describes the shape a page version snapshot must take
// before it is persisted or restored.
const snapshotSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"slug": {"type": "string"},
		"is_homepage": {"type": "boolean"},
		"status": {"type": "string"},
		"published_at": {"type": ["string", "null"]},
		"components": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"component_id": {"type": "string"},
					"slug": {"type": "string"},
					"data": {"type": "object"},
					"order": {"type": "integer"}
				},
				"required": ["component_id", "data", "order"]
			}
		}
	},
	"required": ["title", "slug", "components"]
}`

var (
	snapshotOnce     sync.Once
	snapshotCompiled *jsonschema.Schema
	snapshotErr      error
)

// ValidateSnapshot checks a version snapshot against the snapshot schema.
func ValidateSnapshot(snapshot map[string]any) error {
	snapshotOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("snapshot.json", strings.NewReader(snapshotSchema)); err != nil {
			snapshotErr = err
			return
		}
		snapshotCompiled, snapshotErr = compiler.Compile("snapshot.json")
	})
	if snapshotErr != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, snapshotErr)
	}
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot is empty", ErrSnapshotInvalid)
	}
	if err := snapshotCompiled.Validate(normalize(snapshot)); err != nil {
		return fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	return nil
}

// normalize rewrites typed values into the plain JSON value tree the schema
// validator expects.
func normalize(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, entry := range typed {
			out[key] = normalize(entry)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = normalize(entry)
		}
		return out
	case []map[string]any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = normalize(entry)
		}
		return out
	case fmt.Stringer:
		return typed.String()
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	default:
		return typed
	}
}
