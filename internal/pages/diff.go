package pages

import (
	"fmt"
	"reflect"

	"github.com/compositor-cms/compositor/pages"
)

// diffSnapshots flattens both snapshots to dotted paths and reports every
// path whose value differs. A path present on one side only appears with a
// nil value for the missing side.
func diffSnapshots(from, to map[string]any) map[string]pages.Change {
	left := map[string]any{}
	flatten("", from, left)
	right := map[string]any{}
	flatten("", to, right)

	changes := map[string]pages.Change{}
	for path, before := range left {
		after, present := right[path]
		if !present {
			changes[path] = pages.Change{From: before, To: nil}
			continue
		}
		if !reflect.DeepEqual(normalizeValue(before), normalizeValue(after)) {
			changes[path] = pages.Change{From: before, To: after}
		}
	}
	for path, after := range right {
		if _, present := left[path]; !present {
			changes[path] = pages.Change{From: nil, To: after}
		}
	}
	return changes
}

func flatten(prefix string, value any, out map[string]any) {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 && prefix != "" {
			out[prefix] = typed
			return
		}
		for key, entry := range typed {
			flatten(joinPath(prefix, key), entry, out)
		}
	case []map[string]any:
		if len(typed) == 0 && prefix != "" {
			out[prefix] = typed
			return
		}
		for index, entry := range typed {
			flatten(joinPath(prefix, fmt.Sprintf("%d", index)), entry, out)
		}
	case []any:
		if len(typed) == 0 && prefix != "" {
			out[prefix] = typed
			return
		}
		for index, entry := range typed {
			flatten(joinPath(prefix, fmt.Sprintf("%d", index)), entry, out)
		}
	default:
		if prefix != "" {
			out[prefix] = value
		}
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// normalizeValue aligns in-memory representations with their post-storage
// JSON forms so an int and its float64 round trip, or an empty typed slice
// and an empty []any, compare equal.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case int:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float32:
		return float64(typed)
	case []map[string]any:
		if len(typed) == 0 {
			return []any{}
		}
		return typed
	default:
		return value
	}
}
