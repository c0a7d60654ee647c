// Package visibility evaluates conditional field-visibility rules against a
// map of form values. Evaluation is pure: no I/O, deterministic, safe to
// re-run on both the editing front-end and the validation path.
package visibility

import (
	"reflect"
	"strconv"
	"strings"
)

// Rule gates one field on the value of another.
type Rule struct {
	DependsOn string `json:"dependsOn"`
	Operator  string `json:"operator"`
	Value     any    `json:"value,omitempty"`
}

// Group combines rules under a boolean connective.
type Group struct {
	Logic string `json:"logic"`
	Rules []Rule `json:"rules"`
}

const (
	OperatorEquals      = "equals"
	OperatorNotEquals   = "not_equals"
	OperatorIn          = "in"
	OperatorNotIn       = "not_in"
	OperatorContains    = "contains"
	OperatorNotContains = "not_contains"
	OperatorTruthy      = "truthy"
	OperatorFalsy       = "falsy"
)

// IsVisible reports whether a field should be shown given its rules and the
// current values map. Accepted rule shapes: nil or an empty collection
// (always visible), a single rule map, a list of rule maps (implicit AND), or
// a group map {logic: "and"|"or", rules: [...]}. Unrecognized operators make
// the rule permissive rather than hiding the field.
func IsVisible(rules any, values map[string]any) bool {
	group, ok := normalizeGroup(rules)
	if !ok || len(group.Rules) == 0 {
		return true
	}

	logic := strings.ToLower(strings.TrimSpace(group.Logic))
	if logic != "and" && logic != "or" {
		logic = "and"
	}

	matched := 0
	for _, rule := range group.Rules {
		if evaluateRule(rule, values) {
			matched++
		}
	}

	if logic == "and" {
		return matched == len(group.Rules)
	}
	return matched > 0
}

func normalizeGroup(rules any) (Group, bool) {
	switch typed := rules.(type) {
	case nil:
		return Group{}, false
	case Rule:
		return Group{Logic: "and", Rules: []Rule{typed}}, true
	case *Rule:
		if typed == nil {
			return Group{}, false
		}
		return Group{Logic: "and", Rules: []Rule{*typed}}, true
	case Group:
		return typed, true
	case *Group:
		if typed == nil {
			return Group{}, false
		}
		return *typed, true
	case []Rule:
		return Group{Logic: "and", Rules: typed}, true
	case map[string]any:
		if nested, ok := typed["rules"]; ok {
			logic, _ := typed["logic"].(string)
			group := Group{Logic: logic, Rules: ruleList(nested)}
			return group, true
		}
		return Group{Logic: "and", Rules: []Rule{ruleFromMap(typed)}}, true
	case []any:
		return Group{Logic: "and", Rules: ruleList(typed)}, true
	case []map[string]any:
		list := make([]Rule, 0, len(typed))
		for _, entry := range typed {
			list = append(list, ruleFromMap(entry))
		}
		return Group{Logic: "and", Rules: list}, true
	default:
		return Group{}, false
	}
}

func ruleList(raw any) []Rule {
	switch typed := raw.(type) {
	case []Rule:
		return typed
	case []any:
		list := make([]Rule, 0, len(typed))
		for _, entry := range typed {
			if m, ok := entry.(map[string]any); ok {
				list = append(list, ruleFromMap(m))
			}
		}
		return list
	case []map[string]any:
		list := make([]Rule, 0, len(typed))
		for _, entry := range typed {
			list = append(list, ruleFromMap(entry))
		}
		return list
	default:
		return nil
	}
}

func ruleFromMap(raw map[string]any) Rule {
	rule := Rule{}
	if v, ok := raw["dependsOn"].(string); ok {
		rule.DependsOn = v
	} else if v, ok := raw["depends_on"].(string); ok {
		rule.DependsOn = v
	}
	if v, ok := raw["operator"].(string); ok {
		rule.Operator = v
	}
	rule.Value = raw["value"]
	return rule
}

func evaluateRule(rule Rule, values map[string]any) bool {
	operator := strings.ToLower(strings.TrimSpace(rule.Operator))
	if operator == "" {
		operator = OperatorEquals
	}

	actual := coerce(lookup(values, rule.DependsOn))
	expected := coerce(rule.Value)

	switch operator {
	case OperatorEquals:
		return strictEqual(actual, expected)
	case OperatorNotEquals:
		return !strictEqual(actual, expected)
	case OperatorIn:
		list, ok := expected.([]any)
		if !ok {
			return false
		}
		return memberOf(list, actual)
	case OperatorNotIn:
		list, ok := expected.([]any)
		if !ok {
			return true
		}
		return !memberOf(list, actual)
	case OperatorContains:
		return contains(actual, expected)
	case OperatorNotContains:
		return !contains(actual, expected)
	case OperatorTruthy:
		return isTruthy(actual)
	case OperatorFalsy:
		return !isTruthy(actual)
	default:
		return true
	}
}

// lookup resolves a dotted path against nested maps, returning nil when any
// segment is missing.
func lookup(values map[string]any, path string) any {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}

	segments := strings.Split(path, ".")
	var current any = values
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = node[segment]
		if !ok {
			return nil
		}
	}
	return current
}

// coerce applies the shared casting rules: numeric strings become numbers,
// "true"/"false" strings become booleans, arrays are coerced element-wise and
// every numeric representation collapses to float64 so comparisons stay
// strict-typed after coercion.
func coerce(value any) any {
	switch typed := value.(type) {
	case string:
		lower := strings.ToLower(typed)
		if lower == "true" || lower == "false" {
			return lower == "true"
		}
		if number, err := strconv.ParseFloat(typed, 64); err == nil && strings.TrimSpace(typed) != "" {
			return number
		}
		return typed
	case []any:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = coerce(entry)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for i, entry := range typed {
			out[i] = coerce(entry)
		}
		return out
	case int:
		return float64(typed)
	case int8:
		return float64(typed)
	case int16:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case uint:
		return float64(typed)
	case uint8:
		return float64(typed)
	case uint16:
		return float64(typed)
	case uint32:
		return float64(typed)
	case uint64:
		return float64(typed)
	case float32:
		return float64(typed)
	case interface{ Float64() (float64, error) }:
		// json.Number when decoders run with UseNumber.
		if number, err := typed.Float64(); err == nil {
			return number
		}
		return value
	default:
		return value
	}
}

func strictEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

func memberOf(list []any, candidate any) bool {
	for _, entry := range list {
		if strictEqual(entry, candidate) {
			return true
		}
	}
	return false
}

func contains(actual, expected any) bool {
	if list, ok := actual.([]any); ok {
		return memberOf(list, expected)
	}
	actualStr, aok := actual.(string)
	expectedStr, eok := expected.(string)
	if aok && eok {
		return strings.Contains(actualStr, expectedStr)
	}
	return false
}

func isTruthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case float64:
		return typed != 0
	case string:
		return strings.TrimSpace(typed) != ""
	case []any:
		return len(typed) > 0
	case map[string]any:
		return len(typed) > 0
	default:
		return true
	}
}
