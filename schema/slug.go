package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"
)

// slugPattern is the canonical lowercase-kebab shape accepted for explicit
// slugs: alphanumeric runs separated by single hyphens.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// NormalizeSlug applies the default slug normalization rules.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidSlug reports whether an explicit slug matches the kebab-case rules.
func IsValidSlug(value string) bool {
	return slugPattern.MatchString(value)
}

// DeriveSlug turns free text into a slug candidate, preferring go-slug
// normalization and falling back to a conservative manual pass when the
// normalizer rejects the input outright.
func DeriveSlug(text string) string {
	if normalized, err := slug.Normalize(text); err == nil {
		if candidate := strings.Trim(normalized, "-"); IsValidSlug(candidate) {
			return candidate
		}
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// UniqueSlug suffixes base with -1, -2, ... until taken reports it free.
func UniqueSlug(base string, taken func(candidate string) bool) string {
	if taken == nil || !taken(base) {
		return base
	}
	for counter := 1; ; counter++ {
		candidate := base + "-" + strconv.Itoa(counter)
		if !taken(candidate) {
			return candidate
		}
	}
}
