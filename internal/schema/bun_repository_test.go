package schema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	internalschema "github.com/compositor-cms/compositor/internal/schema"
	"github.com/compositor-cms/compositor/pkg/testsupport"
	"github.com/compositor-cms/compositor/schema"
)

func newSchemaBunDB(t *testing.T) *bun.DB {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	ctx := context.Background()
	models := []any{
		(*schema.Schema)(nil),
		(*schema.Field)(nil),
	}
	for _, model := range models {
		if _, err := bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
	if _, err := bunDB.ExecContext(ctx, "CREATE UNIQUE INDEX IF NOT EXISTS idx_schemas_kind_slug ON schemas(kind, slug) WHERE deleted_at IS NULL"); err != nil {
		t.Fatalf("create index idx_schemas_kind_slug: %v", err)
	}
	if _, err := bunDB.ExecContext(ctx, "CREATE UNIQUE INDEX IF NOT EXISTS idx_schema_fields_schema_slug ON schema_fields(schema_id, slug)"); err != nil {
		t.Fatalf("create index idx_schema_fields_schema_slug: %v", err)
	}

	return bunDB
}

func TestBunRepository_SchemaLifecycle(t *testing.T) {
	ctx := context.Background()
	bunDB := newSchemaBunDB(t)

	svc := internalschema.NewService(internalschema.NewBunRepository(bunDB))

	created, err := svc.Build(ctx, schema.BuildSchemaRequest{
		Kind: schema.KindComponent,
		Name: "Storage Hero",
		Fields: []schema.FieldInput{
			{Name: "Heading", DataType: "short_text", IsRequired: true},
			{Name: "Body", DataType: "text"},
		},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if created.Slug != "storage-hero" {
		t.Fatalf("expected slug storage-hero got %q", created.Slug)
	}
	if len(created.Fields) != 2 {
		t.Fatalf("expected 2 fields got %d", len(created.Fields))
	}
	if created.Fields[0].Slug != "heading" || created.Fields[0].Order != 0 {
		t.Fatalf("expected heading at order 0 got %q at %d", created.Fields[0].Slug, created.Fields[0].Order)
	}

	fetched, err := svc.GetBySlug(ctx, schema.KindComponent, "storage-hero")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if fetched.ID != created.ID {
		t.Fatalf("expected id %s got %s", created.ID, fetched.ID)
	}

	// Field replacement drops the old set wholesale.
	updated, err := svc.Update(ctx, schema.UpdateSchemaRequest{
		ID: created.ID,
		Fields: []schema.FieldInput{
			{Name: "Headline", DataType: "short_text"},
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Fields) != 1 || updated.Fields[0].Slug != "headline" {
		t.Fatalf("expected single headline field got %+v", updated.Fields)
	}

	results, err := svc.Search(ctx, schema.KindComponent, "storage")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 search hit got %d", len(results))
	}

	if err := svc.Delete(ctx, schema.DeleteSchemaRequest{ID: created.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var notFound *schema.NotFoundError
	if _, err := svc.Get(ctx, created.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found after soft delete got %v", err)
	}

	// Soft deleted slugs are free for reuse.
	replacement, err := svc.Build(ctx, schema.BuildSchemaRequest{
		Kind: schema.KindComponent,
		Name: "Storage Hero",
	})
	if err != nil {
		t.Fatalf("rebuild after delete: %v", err)
	}
	if replacement.Slug != "storage-hero" {
		t.Fatalf("expected reclaimed slug storage-hero got %q", replacement.Slug)
	}
}
