package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/compositor-cms/compositor/pages"
)

// BunRepository persists pages, component pivots and version history with
// bun. All write paths run inside a single transaction; the pages slug
// unique index is the final arbiter for concurrent writes.
type BunRepository struct {
	db        *bun.DB
	retention int
}

// BunOption customises the bun-backed repository.
type BunOption func(*BunRepository)

// BunWithRetention overrides how many versions are kept per page.
// Zero or negative keeps every version.
func BunWithRetention(retention int) BunOption {
	return func(r *BunRepository) {
		r.retention = retention
	}
}

// NewBunRepository wraps a bun DB handle.
func NewBunRepository(db *bun.DB, opts ...BunOption) *BunRepository {
	repo := &BunRepository{db: db, retention: DefaultVersionRetention}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (r *BunRepository) Create(ctx context.Context, page *pages.Page, version *pages.Version) (*pages.Page, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if page.IsHomepage {
			if err := clearHomepageTx(ctx, tx, page.ID); err != nil {
				return err
			}
		}
		if _, err := tx.NewInsert().Model(page).ExcludeColumn("deleted_at").Exec(ctx); err != nil {
			return mapPageWriteError(err, page)
		}
		if err := insertComponents(ctx, tx, page.Components); err != nil {
			return err
		}
		return r.appendVersionTx(ctx, tx, page.ID, version)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, page.ID)
}

func (r *BunRepository) Update(ctx context.Context, page *pages.Page, replaceComponents bool, version *pages.Version) (*pages.Page, error) {
	return r.update(ctx, page, replaceComponents, version, false)
}

func (r *BunRepository) Restore(ctx context.Context, page *pages.Page, version *pages.Version) (*pages.Page, error) {
	return r.update(ctx, page, true, version, true)
}

func (r *BunRepository) update(ctx context.Context, page *pages.Page, replaceComponents bool, version *pages.Version, lock bool) (*pages.Page, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if lock && r.db.Dialect().Name() == dialect.PG {
			var locked pages.Page
			err := tx.NewSelect().
				Model(&locked).
				Column("p.id").
				Where("p.id = ?", page.ID).
				For("UPDATE").
				Scan(ctx)
			if errors.Is(err, sql.ErrNoRows) {
				return &pages.NotFoundError{Resource: "page", Key: page.ID.String()}
			}
			if err != nil {
				return fmt.Errorf("pages repository: lock page: %w", err)
			}
		}
		if page.IsHomepage {
			if err := clearHomepageTx(ctx, tx, page.ID); err != nil {
				return err
			}
		}

		res, err := tx.NewUpdate().
			Model(page).
			WherePK().
			Where("deleted_at IS NULL").
			ExcludeColumn("created_at", "deleted_at").
			Exec(ctx)
		if err != nil {
			return mapPageWriteError(err, page)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return &pages.NotFoundError{Resource: "page", Key: page.ID.String()}
		}

		if replaceComponents {
			if _, err := tx.NewDelete().
				Model((*pages.Component)(nil)).
				Where("page_id = ?", page.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("pages repository: delete components: %w", err)
			}
			if err := insertComponents(ctx, tx, page.Components); err != nil {
				return err
			}
		}

		return r.appendVersionTx(ctx, tx, page.ID, version)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, page.ID)
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if hard {
			if _, err := tx.NewDelete().
				Model((*pages.Component)(nil)).
				Where("page_id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("pages repository: delete components: %w", err)
			}
			if _, err := tx.NewDelete().
				Model((*pages.Version)(nil)).
				Where("page_id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("pages repository: delete versions: %w", err)
			}
			res, err := tx.NewDelete().
				Model((*pages.Page)(nil)).
				Where("id = ?", id).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("pages repository: delete page: %w", err)
			}
			if affected, err := res.RowsAffected(); err == nil && affected == 0 {
				return &pages.NotFoundError{Resource: "page", Key: id.String()}
			}
			return nil
		}

		res, err := tx.NewUpdate().
			Model((*pages.Page)(nil)).
			Set("deleted_at = CURRENT_TIMESTAMP").
			Where("id = ?", id).
			Where("deleted_at IS NULL").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("pages repository: soft delete page: %w", err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return &pages.NotFoundError{Resource: "page", Key: id.String()}
		}
		return nil
	})
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*pages.Page, error) {
	page := new(pages.Page)
	err := r.db.NewSelect().
		Model(page).
		Relation("Components", orderComponents).
		Relation("Components.Definition").
		Where("p.id = ?", id).
		Where("p.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &pages.NotFoundError{Resource: "page", Key: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("pages repository: get page: %w", err)
	}
	return page, nil
}

func (r *BunRepository) GetBySlug(ctx context.Context, slug string) (*pages.Page, error) {
	page := new(pages.Page)
	err := r.db.NewSelect().
		Model(page).
		Relation("Components", orderComponents).
		Relation("Components.Definition").
		Where("p.slug = ?", slug).
		Where("p.deleted_at IS NULL").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &pages.NotFoundError{Resource: "page", Key: slug}
	}
	if err != nil {
		return nil, fmt.Errorf("pages repository: get page by slug: %w", err)
	}
	return page, nil
}

func (r *BunRepository) GetHomepage(ctx context.Context) (*pages.Page, error) {
	page := new(pages.Page)
	err := r.db.NewSelect().
		Model(page).
		Relation("Components", orderComponents).
		Relation("Components.Definition").
		Where("p.is_homepage = ?", true).
		Where("p.deleted_at IS NULL").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &pages.NotFoundError{Resource: "homepage"}
	}
	if err != nil {
		return nil, fmt.Errorf("pages repository: get homepage: %w", err)
	}
	return page, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*pages.Page, error) {
	var records []*pages.Page
	err := r.db.NewSelect().
		Model(&records).
		Relation("Components", orderComponents).
		Where("p.deleted_at IS NULL").
		Order("p.slug ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("pages repository: list pages: %w", err)
	}
	return records, nil
}

func (r *BunRepository) Search(ctx context.Context, query string) ([]*pages.Page, error) {
	needle := "%" + strings.ToLower(query) + "%"
	var records []*pages.Page
	err := r.db.NewSelect().
		Model(&records).
		Relation("Components", orderComponents).
		Where("p.deleted_at IS NULL").
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(p.title) LIKE ?", needle).
				WhereOr("LOWER(p.slug) LIKE ?", needle)
		}).
		Order("p.slug ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("pages repository: search pages: %w", err)
	}
	return records, nil
}

func (r *BunRepository) ListSlugs(ctx context.Context) (map[uuid.UUID]string, error) {
	var rows []struct {
		ID   uuid.UUID `bun:"id"`
		Slug string    `bun:"slug"`
	}
	err := r.db.NewSelect().
		Model((*pages.Page)(nil)).
		Column("p.id", "p.slug").
		Where("p.deleted_at IS NULL").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("pages repository: list slugs: %w", err)
	}
	out := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Slug
	}
	return out, nil
}

func (r *BunRepository) ListVersions(ctx context.Context, pageID uuid.UUID) ([]*pages.Version, error) {
	exists, err := r.db.NewSelect().
		Model((*pages.Page)(nil)).
		Where("p.id = ?", pageID).
		Where("p.deleted_at IS NULL").
		Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("pages repository: check page: %w", err)
	}
	if !exists {
		return nil, &pages.NotFoundError{Resource: "page", Key: pageID.String()}
	}

	var versions []*pages.Version
	err = r.db.NewSelect().
		Model(&versions).
		Where("pv.page_id = ?", pageID).
		Order("pv.version DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("pages repository: list versions: %w", err)
	}
	return versions, nil
}

func (r *BunRepository) GetVersion(ctx context.Context, pageID uuid.UUID, number int) (*pages.Version, error) {
	version := new(pages.Version)
	err := r.db.NewSelect().
		Model(version).
		Where("pv.page_id = ?", pageID).
		Where("pv.version = ?", number).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &pages.NotFoundError{Resource: "version", Key: fmt.Sprintf("%d", number)}
	}
	if err != nil {
		return nil, fmt.Errorf("pages repository: get version: %w", err)
	}
	return version, nil
}

// appendVersionTx assigns the next sequence number, inserts the version row
// and prunes entries older than the retention window, all inside the
// surrounding transaction.
func (r *BunRepository) appendVersionTx(ctx context.Context, tx bun.Tx, pageID uuid.UUID, version *pages.Version) error {
	if version == nil {
		return nil
	}

	var current sql.NullInt64
	err := tx.NewSelect().
		Model((*pages.Version)(nil)).
		ColumnExpr("MAX(pv.version)").
		Where("pv.page_id = ?", pageID).
		Scan(ctx, &current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("pages repository: next version: %w", err)
	}

	version.PageID = pageID
	version.Version = int(current.Int64) + 1

	if _, err := tx.NewInsert().Model(version).Exec(ctx); err != nil {
		return fmt.Errorf("pages repository: insert version: %w", err)
	}

	if r.retention > 0 {
		if _, err := tx.NewDelete().
			Model((*pages.Version)(nil)).
			Where("page_id = ?", pageID).
			Where("version <= ?", version.Version-r.retention).
			Exec(ctx); err != nil {
			return fmt.Errorf("pages repository: prune versions: %w", err)
		}
	}
	return nil
}

func insertComponents(ctx context.Context, tx bun.Tx, components []*pages.Component) error {
	if len(components) == 0 {
		return nil
	}
	records := make([]*pages.Component, 0, len(components))
	for _, component := range components {
		copied := *component
		copied.Definition = nil
		records = append(records, &copied)
	}
	if _, err := tx.NewInsert().Model(&records).Exec(ctx); err != nil {
		return fmt.Errorf("pages repository: insert components: %w", err)
	}
	return nil
}

func clearHomepageTx(ctx context.Context, tx bun.Tx, except uuid.UUID) error {
	if _, err := tx.NewUpdate().
		Model((*pages.Page)(nil)).
		Set("is_homepage = ?", false).
		Where("id != ?", except).
		Where("is_homepage = ?", true).
		Exec(ctx); err != nil {
		return fmt.Errorf("pages repository: clear homepage: %w", err)
	}
	return nil
}

func orderComponents(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("pc.position ASC")
}

func mapPageWriteError(err error, page *pages.Page) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return &pages.ConflictError{Slug: page.Slug}
	}
	return fmt.Errorf("pages repository: write: %w", err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
