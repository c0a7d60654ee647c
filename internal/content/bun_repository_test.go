package content_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/compositor-cms/compositor/content"
	internalcontent "github.com/compositor-cms/compositor/internal/content"
	internalschema "github.com/compositor-cms/compositor/internal/schema"
	"github.com/compositor-cms/compositor/pkg/testsupport"
	"github.com/compositor-cms/compositor/schema"
)

func newContentBunDB(t *testing.T) *bun.DB {
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
		(*content.Item)(nil),
	}
	for _, model := range models {
		if _, err := bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}

	return bunDB
}

func TestBunItemRepository_ItemLifecycleWithCache(t *testing.T) {
	ctx := context.Background()
	bunDB := newContentBunDB(t)

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	keySerializer := repocache.NewDefaultKeySerializer()

	schemaSvc := internalschema.NewService(internalschema.NewBunRepository(bunDB))
	itemRepo := internalcontent.NewBunItemRepositoryWithCache(bunDB, cacheService, keySerializer)
	svc := internalcontent.NewService(itemRepo, schemaSvc)

	posts, err := schemaSvc.Build(ctx, schema.BuildSchemaRequest{
		Kind: schema.KindCollection,
		Name: "Storage Posts",
	})
	if err != nil {
		t.Fatalf("build collection: %v", err)
	}

	first, err := svc.Create(ctx, content.CreateItemRequest{
		CollectionID: posts.ID,
		Data:         map[string]any{"title": "First"},
		IsPublished:  true,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.Order != 0 {
		t.Fatalf("expected first item at position 0 got %d", first.Order)
	}

	second, err := svc.Create(ctx, content.CreateItemRequest{
		CollectionID: posts.ID,
		Data:         map[string]any{"title": "Second"},
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Order != 1 {
		t.Fatalf("expected second item appended at position 1 got %d", second.Order)
	}

	all, err := svc.List(ctx, posts.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items got %d", len(all))
	}

	published, err := svc.ListPublished(ctx, posts.ID)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(published) != 1 || published[0].ID != first.ID {
		t.Fatalf("expected only the published item got %d", len(published))
	}

	updatedData := map[string]any{"title": "First Edited"}
	updated, err := svc.Update(ctx, content.UpdateItemRequest{
		ID:   first.ID,
		Data: updatedData,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Data["title"] != "First Edited" {
		t.Fatalf("expected edited title got %v", updated.Data["title"])
	}

	if err := svc.Delete(ctx, content.DeleteItemRequest{ID: second.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var notFound *content.NotFoundError
	if _, err := svc.Get(ctx, second.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found after soft delete got %v", err)
	}

	remaining, err := svc.List(ctx, posts.ID)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 live item got %d", len(remaining))
	}
}
