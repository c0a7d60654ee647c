package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/compositor-cms/compositor/fields"
	"github.com/compositor-cms/compositor/internal/validation"
	"github.com/compositor-cms/compositor/schema"
)

func fieldDef(name, slug string, dataType fields.DataType, required bool) *schema.Field {
	return &schema.Field{Name: name, Slug: slug, DataType: dataType, IsRequired: required}
}

func TestValidateComponentDataAcceptsValidPayload(t *testing.T) {
	defs := []*schema.Field{
		fieldDef("Heading", "heading", fields.DataTypeShortText, true),
		fieldDef("Body", "body", fields.DataTypeText, false),
		fieldDef("Published On", "published-on", fields.DataTypeDate, false),
		fieldDef("Featured", "featured", fields.DataTypeBoolean, false),
		fieldDef("Tags", "tags", fields.DataTypeList, false),
		fieldDef("Related", "related", fields.DataTypeCollection, false),
	}

	err := validation.ValidateComponentData(defs, map[string]any{
		"heading":      "Welcome",
		"body":         "Long form copy.",
		"published-on": "2026-09-01",
		"featured":     true,
		"tags":         []any{"news", "press"},
		"related":      float64(7),
	})
	if err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}
}

func TestValidateComponentDataMissingRequiredField(t *testing.T) {
	defs := []*schema.Field{
		fieldDef("Heading", "heading", fields.DataTypeShortText, true),
	}

	err := validation.ValidateComponentData(defs, map[string]any{})
	if !errors.Is(err, validation.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}

	issues := validation.Issues(err)
	if len(issues) != 1 || issues[0].Field != "heading" {
		t.Fatalf("expected one issue on heading, got %+v", issues)
	}
	if !strings.Contains(issues[0].Message, "Heading") {
		t.Fatalf("message should name the field: %q", issues[0].Message)
	}
}

func TestValidateComponentDataBlankStringFailsRequired(t *testing.T) {
	defs := []*schema.Field{
		fieldDef("Heading", "heading", fields.DataTypeShortText, true),
	}

	err := validation.ValidateComponentData(defs, map[string]any{"heading": "   "})
	if !errors.Is(err, validation.ErrValidationFailed) {
		t.Fatalf("expected blank string to fail required, got %v", err)
	}
}

func TestValidateComponentDataTypeMismatches(t *testing.T) {
	cases := []struct {
		name     string
		dataType fields.DataType
		value    any
	}{
		{"number for short_text", fields.DataTypeShortText, float64(3)},
		{"string for boolean", fields.DataTypeBoolean, "yes"},
		{"garbage for date", fields.DataTypeDate, "not-a-date"},
		{"scalar for list", fields.DataTypeList, "one"},
		{"fraction for collection", fields.DataTypeCollection, 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defs := []*schema.Field{fieldDef("Value", "value", tc.dataType, false)}
			err := validation.ValidateComponentData(defs, map[string]any{"value": tc.value})
			if !errors.Is(err, validation.ErrValidationFailed) {
				t.Fatalf("expected type mismatch to fail, got %v", err)
			}
		})
	}
}

func TestValidateComponentDataShortTextLengthCap(t *testing.T) {
	defs := []*schema.Field{
		fieldDef("Heading", "heading", fields.DataTypeShortText, true),
	}

	long := strings.Repeat("x", 257)
	err := validation.ValidateComponentData(defs, map[string]any{"heading": long})
	if !errors.Is(err, validation.ErrValidationFailed) {
		t.Fatalf("expected 257-char value to exceed cap, got %v", err)
	}

	if err := validation.ValidateComponentData(defs, map[string]any{"heading": strings.Repeat("x", 256)}); err != nil {
		t.Fatalf("256 chars should validate, got %v", err)
	}
}

func TestValidateComponentDataOptionalFieldsSkipTypeCheckWhenAbsent(t *testing.T) {
	defs := []*schema.Field{
		fieldDef("Featured", "featured", fields.DataTypeBoolean, false),
	}

	if err := validation.ValidateComponentData(defs, map[string]any{}); err != nil {
		t.Fatalf("absent optional field should pass, got %v", err)
	}
	if err := validation.ValidateComponentData(defs, map[string]any{"featured": nil}); err != nil {
		t.Fatalf("nil optional field should pass, got %v", err)
	}
}

func TestValidateComponentDataIgnoresUndeclaredKeys(t *testing.T) {
	defs := []*schema.Field{
		fieldDef("Heading", "heading", fields.DataTypeShortText, true),
	}

	err := validation.ValidateComponentData(defs, map[string]any{
		"heading": "Welcome",
		"extra":   map[string]any{"anything": true},
	})
	if err != nil {
		t.Fatalf("undeclared keys must pass through, got %v", err)
	}
}

func TestValidateComponentDataCollectsAllViolations(t *testing.T) {
	defs := []*schema.Field{
		fieldDef("Heading", "heading", fields.DataTypeShortText, true),
		fieldDef("Featured", "featured", fields.DataTypeBoolean, true),
	}

	err := validation.ValidateComponentData(defs, map[string]any{"featured": "yes"})
	issues := validation.Issues(err)
	if len(issues) != 2 {
		t.Fatalf("expected issues for both fields, got %+v", issues)
	}
}
