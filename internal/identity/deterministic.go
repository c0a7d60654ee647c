package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ComponentUUID names config-seeded component definitions so repeated
// bootstraps converge on the same record.
func ComponentUUID(slug string) uuid.UUID {
	return UUID("compositor:component:" + strings.ToLower(strings.TrimSpace(slug)))
}

// ComponentFieldUUID names a seeded field within its component definition.
func ComponentFieldUUID(componentID uuid.UUID, slug string) uuid.UUID {
	return UUID("compositor:component_field:" + componentID.String() + ":" + strings.ToLower(strings.TrimSpace(slug)))
}
