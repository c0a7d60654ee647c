package visibility_test

import (
	"testing"

	"github.com/compositor-cms/compositor/visibility"
)

func TestNilOrEmptyRulesAlwaysVisible(t *testing.T) {
	if !visibility.IsVisible(nil, map[string]any{}) {
		t.Fatal("nil rules should be visible")
	}
	if !visibility.IsVisible([]any{}, map[string]any{"a": 1}) {
		t.Fatal("empty rule list should be visible")
	}
	if !visibility.IsVisible(map[string]any{"logic": "or", "rules": []any{}}, nil) {
		t.Fatal("empty group should be visible")
	}
}

func TestSingleEqualsRule(t *testing.T) {
	rule := map[string]any{"dependsOn": "country", "operator": "equals", "value": "US"}

	if !visibility.IsVisible(rule, map[string]any{"country": "US"}) {
		t.Fatal("expected match for country=US")
	}
	if visibility.IsVisible(rule, map[string]any{"country": "CA"}) {
		t.Fatal("expected no match for country=CA")
	}
	if visibility.IsVisible(rule, map[string]any{}) {
		t.Fatal("expected no match for missing value")
	}
}

func TestCoercionBridgesStringsNumbersAndBooleans(t *testing.T) {
	numeric := visibility.Rule{DependsOn: "count", Operator: "equals", Value: "3"}
	if !visibility.IsVisible(numeric, map[string]any{"count": 3}) {
		t.Fatal(`"3" should equal 3 after coercion`)
	}

	boolean := visibility.Rule{DependsOn: "enabled", Operator: "equals", Value: "TRUE"}
	if !visibility.IsVisible(boolean, map[string]any{"enabled": true}) {
		t.Fatal(`"TRUE" should equal true after coercion`)
	}

	mismatch := visibility.Rule{DependsOn: "count", Operator: "equals", Value: "3"}
	if visibility.IsVisible(mismatch, map[string]any{"count": "three"}) {
		t.Fatal("non-numeric string should not match numeric literal")
	}
}

func TestDottedPathLookup(t *testing.T) {
	rule := visibility.Rule{DependsOn: "address.country", Operator: "equals", Value: "US"}
	values := map[string]any{
		"address": map[string]any{"country": "US"},
	}
	if !visibility.IsVisible(rule, values) {
		t.Fatal("dotted path should resolve nested maps")
	}

	rule.DependsOn = "address.region.code"
	if visibility.IsVisible(rule, values) {
		t.Fatal("missing nested segment should evaluate to nil")
	}
}

func TestImplicitAndOverRuleList(t *testing.T) {
	rules := []any{
		map[string]any{"dependsOn": "a", "operator": "truthy"},
		map[string]any{"dependsOn": "b", "operator": "equals", "value": "x"},
	}

	if !visibility.IsVisible(rules, map[string]any{"a": 1, "b": "x"}) {
		t.Fatal("both rules hold, expected visible")
	}
	if visibility.IsVisible(rules, map[string]any{"a": 1, "b": "y"}) {
		t.Fatal("second rule fails, expected hidden")
	}
}

func TestOrGroup(t *testing.T) {
	group := map[string]any{
		"logic": "or",
		"rules": []any{
			map[string]any{"dependsOn": "a", "operator": "truthy"},
			map[string]any{"dependsOn": "b", "operator": "truthy"},
		},
	}

	if !visibility.IsVisible(group, map[string]any{"a": 0, "b": "yes"}) {
		t.Fatal("one truthy operand should satisfy OR")
	}
	if visibility.IsVisible(group, map[string]any{"a": 0, "b": " "}) {
		t.Fatal("no truthy operand, expected hidden")
	}
}

func TestInAndNotIn(t *testing.T) {
	in := visibility.Rule{DependsOn: "plan", Operator: "in", Value: []any{"pro", "team"}}
	if !visibility.IsVisible(in, map[string]any{"plan": "pro"}) {
		t.Fatal("expected membership match")
	}
	if visibility.IsVisible(in, map[string]any{"plan": "free"}) {
		t.Fatal("expected no membership match")
	}

	// Non-array operand defaults: in → false, not_in → true.
	badIn := visibility.Rule{DependsOn: "plan", Operator: "in", Value: "pro"}
	if visibility.IsVisible(badIn, map[string]any{"plan": "pro"}) {
		t.Fatal("in with scalar operand should be false")
	}
	badNotIn := visibility.Rule{DependsOn: "plan", Operator: "not_in", Value: "pro"}
	if !visibility.IsVisible(badNotIn, map[string]any{"plan": "pro"}) {
		t.Fatal("not_in with scalar operand should be true")
	}
}

func TestContains(t *testing.T) {
	array := visibility.Rule{DependsOn: "tags", Operator: "contains", Value: "2"}
	if !visibility.IsVisible(array, map[string]any{"tags": []any{1, 2, 3}}) {
		t.Fatal("array membership with coercion should match")
	}

	substring := visibility.Rule{DependsOn: "title", Operator: "contains", Value: "well"}
	if !visibility.IsVisible(substring, map[string]any{"title": "farewell tour"}) {
		t.Fatal("substring containment should match")
	}

	scalar := visibility.Rule{DependsOn: "count", Operator: "contains", Value: "1"}
	if visibility.IsVisible(scalar, map[string]any{"count": 12}) {
		t.Fatal("contains against a number should be false")
	}
}

func TestTruthyAndFalsy(t *testing.T) {
	cases := []struct {
		value  any
		truthy bool
	}{
		{true, true},
		{false, false},
		{0, false},
		{2, true},
		{"", false},
		{"  ", false},
		{"ok", true},
		{[]any{}, false},
		{[]any{1}, true},
		{nil, false},
	}

	for _, tc := range cases {
		rule := visibility.Rule{DependsOn: "v", Operator: "truthy"}
		got := visibility.IsVisible(rule, map[string]any{"v": tc.value})
		if got != tc.truthy {
			t.Fatalf("truthy(%#v) = %v, expected %v", tc.value, got, tc.truthy)
		}

		rule.Operator = "falsy"
		if visibility.IsVisible(rule, map[string]any{"v": tc.value}) == tc.truthy {
			t.Fatalf("falsy(%#v) should be inverse of truthy", tc.value)
		}
	}
}

func TestUnknownOperatorIsPermissive(t *testing.T) {
	rule := visibility.Rule{DependsOn: "a", Operator: "matches_regex", Value: "^x"}
	if !visibility.IsVisible(rule, map[string]any{"a": "nope"}) {
		t.Fatal("unrecognized operator should evaluate to true")
	}
}
