package validation_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/internal/validation"
)

func TestValidateSnapshotAcceptsWellFormedSnapshot(t *testing.T) {
	err := validation.ValidateSnapshot(map[string]any{
		"title":       "Home",
		"slug":        "home",
		"is_homepage": true,
		"status":      "published",
		"components": []map[string]any{
			{
				"component_id": uuid.New(),
				"slug":         "hero",
				"data":         map[string]any{"heading": "Welcome"},
				"order":        0,
			},
		},
	})
	if err != nil {
		t.Fatalf("expected snapshot to validate, got %v", err)
	}
}

func TestValidateSnapshotRejectsMissingComponents(t *testing.T) {
	err := validation.ValidateSnapshot(map[string]any{
		"title": "Home",
		"slug":  "home",
	})
	if !errors.Is(err, validation.ErrSnapshotInvalid) {
		t.Fatalf("expected ErrSnapshotInvalid, got %v", err)
	}
}

func TestValidateSnapshotRejectsMalformedComponentEntry(t *testing.T) {
	err := validation.ValidateSnapshot(map[string]any{
		"title":      "Home",
		"slug":       "home",
		"components": []map[string]any{{"slug": "hero"}},
	})
	if !errors.Is(err, validation.ErrSnapshotInvalid) {
		t.Fatalf("expected ErrSnapshotInvalid, got %v", err)
	}
}

func TestValidateSnapshotRejectsNil(t *testing.T) {
	if err := validation.ValidateSnapshot(nil); !errors.Is(err, validation.ErrSnapshotInvalid) {
		t.Fatal("nil snapshot must be rejected")
	}
}
