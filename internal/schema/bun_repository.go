package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/compositor-cms/compositor/schema"
)

// BunRepository persists schemas and their fields through bun. Multi-row
// writes run inside one transaction so a failed field insert rolls back the
// schema row as well.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a schema repository backed by bun.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

var _ Repository = (*BunRepository)(nil)

func (r *BunRepository) Create(ctx context.Context, record *schema.Schema) (*schema.Schema, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return mapWriteError(err, record)
		}
		return insertFields(ctx, tx, record.Fields)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *BunRepository) Update(ctx context.Context, record *schema.Schema) (*schema.Schema, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model(record).
			WherePK().
			Where("deleted_at IS NULL").
			ExcludeColumn("created_at", "deleted_at").
			Exec(ctx)
		if err != nil {
			return mapWriteError(err, record)
		}
		affected, err := result.RowsAffected()
		if err == nil && affected == 0 {
			return &schema.NotFoundError{Kind: record.Kind, Key: record.ID.String()}
		}

		// Full field replacement: the previous set never survives an update.
		if _, err := tx.NewDelete().
			Model((*schema.Field)(nil)).
			Where("schema_id = ?", record.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("schema repository: delete fields: %w", err)
		}
		return insertFields(ctx, tx, record.Fields)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID, hardDelete bool) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if hardDelete {
			if _, err := tx.NewDelete().
				Model((*schema.Field)(nil)).
				Where("schema_id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("schema repository: delete fields: %w", err)
			}
			result, err := tx.NewDelete().
				Model((*schema.Schema)(nil)).
				Where("id = ?", id).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("schema repository: delete: %w", err)
			}
			if affected, err := result.RowsAffected(); err == nil && affected == 0 {
				return &schema.NotFoundError{Key: id.String()}
			}
			return nil
		}

		result, err := tx.NewUpdate().
			Model((*schema.Schema)(nil)).
			Set("deleted_at = ?", time.Now().UTC()).
			Where("id = ?", id).
			Where("deleted_at IS NULL").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("schema repository: soft delete: %w", err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return &schema.NotFoundError{Key: id.String()}
		}
		return nil
	})
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*schema.Schema, error) {
	record := new(schema.Schema)
	err := r.db.NewSelect().
		Model(record).
		Relation("Fields", orderFields).
		Where("s.id = ?", id).
		Where("s.deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &schema.NotFoundError{Key: id.String()}
		}
		return nil, fmt.Errorf("schema repository: get: %w", err)
	}
	return record, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, kind schema.Kind, slug string) (*schema.Schema, error) {
	record := new(schema.Schema)
	err := r.db.NewSelect().
		Model(record).
		Relation("Fields", orderFields).
		Where("s.kind = ?", kind).
		Where("s.slug = ?", slug).
		Where("s.deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &schema.NotFoundError{Kind: kind, Key: slug}
		}
		return nil, fmt.Errorf("schema repository: get by slug: %w", err)
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context, kind schema.Kind) ([]*schema.Schema, error) {
	var records []*schema.Schema
	err := r.db.NewSelect().
		Model(&records).
		Relation("Fields", orderFields).
		Where("s.kind = ?", kind).
		Where("s.deleted_at IS NULL").
		OrderExpr("s.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema repository: list: %w", err)
	}
	return records, nil
}

func (r *BunRepository) Search(ctx context.Context, kind schema.Kind, query string) ([]*schema.Schema, error) {
	needle := "%" + strings.ToLower(query) + "%"
	var records []*schema.Schema
	err := r.db.NewSelect().
		Model(&records).
		Relation("Fields", orderFields).
		Where("s.kind = ?", kind).
		Where("s.deleted_at IS NULL").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(s.name) LIKE ?", needle).
				WhereOr("LOWER(s.slug) LIKE ?", needle)
		}).
		OrderExpr("s.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema repository: search: %w", err)
	}
	return records, nil
}

func (r *BunRepository) ListSlugs(ctx context.Context, kind schema.Kind) (map[uuid.UUID]string, error) {
	var rows []struct {
		ID   uuid.UUID `bun:"id"`
		Slug string    `bun:"slug"`
	}
	err := r.db.NewSelect().
		Model((*schema.Schema)(nil)).
		Column("id", "slug").
		Where("kind = ?", kind).
		Where("deleted_at IS NULL").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("schema repository: list slugs: %w", err)
	}
	out := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Slug
	}
	return out, nil
}

func insertFields(ctx context.Context, tx bun.Tx, defs []*schema.Field) error {
	if len(defs) == 0 {
		return nil
	}
	if _, err := tx.NewInsert().Model(&defs).Exec(ctx); err != nil {
		return fmt.Errorf("schema repository: insert fields: %w", err)
	}
	return nil
}

// mapWriteError converts driver-level unique index violations into the
// conflict error surfaced to callers; the index is the final arbiter when
// concurrent builds race past the slug pre-check.
func mapWriteError(err error, record *schema.Schema) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return &schema.ConflictError{Kind: record.Kind, Slug: record.Slug}
	}
	return fmt.Errorf("schema repository: write: %w", err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

func orderFields(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("sf.field_order ASC")
}
