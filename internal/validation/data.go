package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/compositor-cms/compositor/fields"
	"github.com/compositor-cms/compositor/schema"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ValidateComponentData checks a component instance's data map against the
// component's field definitions. Required fields must carry a non-empty
// value; optional fields are only type-checked when present. Keys in data
// with no matching field definition pass through untouched.
func ValidateComponentData(defs []*schema.Field, data map[string]any) error {
	issues := make([]Issue, 0)

	for _, def := range defs {
		if def == nil {
			continue
		}
		value, present := data[def.Slug]

		if !present || isEmpty(value) {
			if def.IsRequired {
				issues = append(issues, Issue{
					Field:   def.Slug,
					Message: fmt.Sprintf("The %s field is required.", def.Name),
				})
			}
			continue
		}

		if err := validation.Validate(value, rulesFor(def.DataType)...); err != nil {
			issues = append(issues, issuesFromOzzo(def, err)...)
		}
	}

	if len(issues) > 0 {
		return &DataValidationError{Issues: issues}
	}
	return nil
}

// rulesFor maps a data type's rule tokens onto ozzo rules, in token order.
func rulesFor(dataType fields.DataType) []validation.Rule {
	tokens := dataType.Rules()
	rules := make([]validation.Rule, 0, len(tokens))
	for _, token := range tokens {
		switch {
		case token == "string":
			rules = append(rules, validation.By(mustString))
		case token == "boolean":
			rules = append(rules, validation.By(mustBoolean))
		case token == "date":
			rules = append(rules, validation.By(mustDate))
		case token == "array":
			rules = append(rules, validation.By(mustArray))
		case token == "integer":
			rules = append(rules, validation.By(mustInteger))
		case strings.HasPrefix(token, "max:"):
			if limit, err := strconv.Atoi(strings.TrimPrefix(token, "max:")); err == nil {
				rules = append(rules, validation.By(maxRunes(limit)))
			}
		}
	}
	return rules
}

func issuesFromOzzo(def *schema.Field, err error) []Issue {
	var errs validation.Errors
	if errors.As(err, &errs) {
		keys := make([]string, 0, len(errs))
		for key := range errs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		issues := make([]Issue, 0, len(keys))
		for _, key := range keys {
			issues = append(issues, Issue{Field: def.Slug, Message: errs[key].Error()})
		}
		return issues
	}
	return []Issue{{Field: def.Slug, Message: err.Error()}}
}

// isEmpty mirrors required-ness semantics: nil, blank strings and empty
// collections do not satisfy a required field.
func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	default:
		return false
	}
}

func mustString(value any) error {
	if _, ok := value.(string); !ok {
		return errors.New("must be a string")
	}
	return nil
}

func mustBoolean(value any) error {
	if _, ok := value.(bool); !ok {
		return errors.New("must be a boolean")
	}
	return nil
}

func mustDate(value any) error {
	text, ok := value.(string)
	if !ok {
		return errors.New("must be a date")
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, text); err == nil {
			return nil
		}
	}
	return errors.New("must be a valid date")
}

func mustArray(value any) error {
	switch value.(type) {
	case []any, []map[string]any, []string:
		return nil
	default:
		return errors.New("must be an array")
	}
}

func mustInteger(value any) error {
	switch typed := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float64:
		if typed == math.Trunc(typed) {
			return nil
		}
	case float32:
		if float64(typed) == math.Trunc(float64(typed)) {
			return nil
		}
	case json.Number:
		if _, err := typed.Int64(); err == nil {
			return nil
		}
	}
	return errors.New("must be an integer")
}

func maxRunes(limit int) validation.RuleFunc {
	return func(value any) error {
		text, ok := value.(string)
		if !ok {
			return nil
		}
		if len([]rune(text)) > limit {
			return fmt.Errorf("must be at most %d characters", limit)
		}
		return nil
	}
}
