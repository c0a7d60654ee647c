package content_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/content"
	internalcontent "github.com/compositor-cms/compositor/internal/content"
	internalschema "github.com/compositor-cms/compositor/internal/schema"
	"github.com/compositor-cms/compositor/schema"
)

type fixture struct {
	items   content.Service
	schemas schema.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	schemas := internalschema.NewService(internalschema.NewMemoryRepository())
	items := internalcontent.NewService(internalcontent.NewMemoryRepository(), schemas)
	return &fixture{items: items, schemas: schemas}
}

func (f *fixture) buildPosts(t *testing.T) *schema.Schema {
	t.Helper()
	posts, err := f.schemas.Build(context.Background(), schema.BuildSchemaRequest{
		Kind: schema.KindCollection,
		Name: "Posts",
		Fields: []schema.FieldInput{
			{Name: "Title", DataType: "short_text", IsRequired: true},
		},
	})
	if err != nil {
		t.Fatalf("build collection: %v", err)
	}
	return posts
}

func TestCreateItemAppendsAtEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	posts := f.buildPosts(t)

	for i := 0; i < 3; i++ {
		item, err := f.items.Create(ctx, content.CreateItemRequest{
			CollectionID: posts.ID,
			Data:         map[string]any{"title": "Post"},
		})
		if err != nil {
			t.Fatalf("create item %d: %v", i, err)
		}
		if item.Order != i {
			t.Fatalf("expected append order %d, got %d", i, item.Order)
		}
	}
}

// Collection items are deliberately not gated by their collection's field
// schema: a payload that would fail component validation still writes. Page
// component data takes the strict path.
func TestCreateItemDataIsNotSchemaGated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	posts := f.buildPosts(t)

	item, err := f.items.Create(ctx, content.CreateItemRequest{
		CollectionID: posts.ID,
		Data:         map[string]any{"unknown": 42},
	})
	if err != nil {
		t.Fatalf("freeform data must write without schema validation, got %v", err)
	}
	if item.Data["unknown"] != 42 {
		t.Fatalf("data must round-trip untouched, got %+v", item.Data)
	}
}

func TestCreateItemRejectsUnknownCollection(t *testing.T) {
	f := newFixture(t)

	_, err := f.items.Create(context.Background(), content.CreateItemRequest{
		CollectionID: uuid.New(),
	})
	var notFound *content.NotFoundError
	if !errors.As(err, &notFound) || notFound.Resource != "collection" {
		t.Fatalf("expected collection NotFoundError, got %v", err)
	}
}

func TestCreateItemRejectsComponentSchema(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hero, err := f.schemas.Build(ctx, schema.BuildSchemaRequest{
		Kind: schema.KindComponent,
		Name: "Hero",
	})
	if err != nil {
		t.Fatalf("build component: %v", err)
	}

	_, err = f.items.Create(ctx, content.CreateItemRequest{CollectionID: hero.ID})
	if !errors.Is(err, content.ErrNotACollection) {
		t.Fatalf("expected ErrNotACollection, got %v", err)
	}
}

func TestListPublishedFiltersDrafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	posts := f.buildPosts(t)

	if _, err := f.items.Create(ctx, content.CreateItemRequest{
		CollectionID: posts.ID,
		Data:         map[string]any{"title": "Draft"},
	}); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	published, err := f.items.Create(ctx, content.CreateItemRequest{
		CollectionID: posts.ID,
		Data:         map[string]any{"title": "Live"},
		IsPublished:  true,
	})
	if err != nil {
		t.Fatalf("create published: %v", err)
	}

	all, err := f.items.List(ctx, posts.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 items, got %d", len(all))
	}

	live, err := f.items.ListPublished(ctx, posts.ID)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(live) != 1 || live[0].ID != published.ID {
		t.Fatalf("expected only the published item, got %+v", live)
	}
}

func TestUpdateItemTogglesPublicationAndReorders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	posts := f.buildPosts(t)

	item, err := f.items.Create(ctx, content.CreateItemRequest{
		CollectionID: posts.ID,
		Data:         map[string]any{"title": "Post"},
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	publish := true
	order := 9
	updated, err := f.items.Update(ctx, content.UpdateItemRequest{
		ID:          item.ID,
		IsPublished: &publish,
		Order:       &order,
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if !updated.IsPublished || updated.Order != 9 {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.Data["title"] != "Post" {
		t.Fatalf("nil data must keep the current payload, got %+v", updated.Data)
	}
}

func TestDeleteItemHidesIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	posts := f.buildPosts(t)

	item, err := f.items.Create(ctx, content.CreateItemRequest{
		CollectionID: posts.ID,
		Data:         map[string]any{"title": "Post"},
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := f.items.Delete(ctx, content.DeleteItemRequest{ID: item.ID}); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	var notFound *content.NotFoundError
	if _, err := f.items.Get(ctx, item.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}

	listed, err := f.items.List(ctx, posts.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("deleted items must not list, got %d", len(listed))
	}
}
