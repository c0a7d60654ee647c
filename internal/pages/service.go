package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/internal/logging"
	"github.com/compositor-cms/compositor/internal/validation"
	"github.com/compositor-cms/compositor/pages"
	"github.com/compositor-cms/compositor/pkg/interfaces"
	"github.com/compositor-cms/compositor/schema"
)

// Option mutates the pages service.
type Option func(*service)

// WithClock overrides the clock used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator for pages, components and versions.
func WithIDGenerator(generator IDGenerator) Option {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger attaches a logger to the service.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVersioning toggles version history. Disabled, no snapshots are written
// and the version operations fail with ErrVersioningDisabled.
func WithVersioning(enabled bool) Option {
	return func(s *service) {
		s.versioning = enabled
	}
}

// NewService constructs the page composition service. Component definitions
// are resolved through the schema service at write time; data payloads are
// validated against the definition's fields before anything is persisted.
func NewService(repo Repository, schemas schema.Service, opts ...Option) pages.Service {
	svc := &service{
		repo:       repo,
		schemas:    schemas,
		now:        func() time.Time { return time.Now().UTC() },
		id:         uuid.New,
		logger:     logging.NoOp(),
		versioning: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

type service struct {
	repo       Repository
	schemas    schema.Service
	now        func() time.Time
	id         IDGenerator
	logger     interfaces.Logger
	versioning bool
}

func (s *service) Create(ctx context.Context, req pages.CreatePageRequest) (*pages.Page, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, pages.ErrTitleRequired
	}

	status := req.Status
	if status == "" {
		status = pages.StatusDraft
	}
	if !pages.ValidStatus(status) {
		return nil, pages.ErrStatusInvalid
	}

	now := s.now()
	page := &pages.Page{
		ID:          s.id(),
		Title:       title,
		IsHomepage:  req.IsHomepage,
		Status:      status,
		PublishedAt: req.PublishedAt,
		CreatedBy:   req.CreatedBy,
		UpdatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if page.Status == pages.StatusPublished && page.PublishedAt == nil {
		page.PublishedAt = &now
	}

	slug, err := s.resolveSlug(ctx, req.Slug, title, page.ID)
	if err != nil {
		return nil, err
	}
	page.Slug = slug

	page.Components, err = s.buildComponents(ctx, page.ID, req.Components)
	if err != nil {
		return nil, err
	}

	version, err := s.versionFor(page, "Created", req.CreatedBy)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, page, version)
	if err != nil {
		return nil, err
	}

	s.logger.Info("page created", "slug", created.Slug, "components", len(created.Components))
	return created, nil
}

func (s *service) Update(ctx context.Context, req pages.UpdatePageRequest) (*pages.Page, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	if req.ID == uuid.Nil {
		return nil, pages.ErrPageRequired
	}

	page, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		page.Title = strings.TrimSpace(*req.Title)
	}
	if page.Title == "" {
		return nil, pages.ErrTitleRequired
	}
	if req.IsHomepage != nil {
		page.IsHomepage = *req.IsHomepage
	}
	if req.Status != nil {
		if !pages.ValidStatus(*req.Status) {
			return nil, pages.ErrStatusInvalid
		}
		page.Status = *req.Status
	}
	if req.PublishedAt != nil {
		page.PublishedAt = req.PublishedAt
	}

	now := s.now()
	if page.Status == pages.StatusPublished && page.PublishedAt == nil {
		page.PublishedAt = &now
	}

	requested := page.Slug
	if req.Slug != nil {
		requested = strings.TrimSpace(*req.Slug)
	}
	slug, err := s.resolveSlug(ctx, requested, page.Title, page.ID)
	if err != nil {
		return nil, err
	}
	page.Slug = slug

	replaceComponents := req.Components != nil
	if replaceComponents {
		page.Components, err = s.buildComponents(ctx, page.ID, req.Components)
		if err != nil {
			return nil, err
		}
	}

	// An actorless update keeps the previous updater on record.
	if req.UpdatedBy != nil {
		page.UpdatedBy = req.UpdatedBy
	}
	page.UpdatedAt = now

	version, err := s.versionFor(page, "Updated", req.UpdatedBy)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, page, replaceComponents, version)
	if err != nil {
		return nil, err
	}

	s.logger.Info("page updated", "slug", updated.Slug, "components", len(updated.Components))
	return updated, nil
}

func (s *service) Delete(ctx context.Context, req pages.DeletePageRequest) error {
	if s == nil || s.repo == nil {
		return errors.New("pages service unavailable")
	}
	if req.ID == uuid.Nil {
		return pages.ErrPageRequired
	}
	return s.repo.Delete(ctx, req.ID, req.HardDelete)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*pages.Page, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	if id == uuid.Nil {
		return nil, pages.ErrPageRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*pages.Page, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pages.ErrSlugRequired
	}
	return s.repo.GetBySlug(ctx, slug)
}

func (s *service) GetHomepage(ctx context.Context) (*pages.Page, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	return s.repo.GetHomepage(ctx)
}

func (s *service) List(ctx context.Context) ([]*pages.Page, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	return s.repo.List(ctx)
}

func (s *service) Search(ctx context.Context, query string) ([]*pages.Page, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, query)
}

func (s *service) AssignComponents(ctx context.Context, req pages.AssignComponentsRequest) (*pages.Page, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	if req.PageID == uuid.Nil {
		return nil, pages.ErrPageRequired
	}

	page, err := s.repo.GetByID(ctx, req.PageID)
	if err != nil {
		return nil, err
	}

	// Validate the entire incoming set before touching storage so a bad
	// payload leaves the previous component set intact.
	page.Components, err = s.buildComponents(ctx, page.ID, req.Components)
	if err != nil {
		return nil, err
	}
	if req.UpdatedBy != nil {
		page.UpdatedBy = req.UpdatedBy
	}
	page.UpdatedAt = s.now()

	version, err := s.versionFor(page, "Updated components", req.UpdatedBy)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, page, true, version)
	if err != nil {
		return nil, err
	}

	s.logger.Info("page components replaced", "slug", updated.Slug, "components", len(updated.Components))
	return updated, nil
}

func (s *service) ListVersions(ctx context.Context, pageID uuid.UUID) ([]*pages.Version, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	if !s.versioning {
		return nil, pages.ErrVersioningDisabled
	}
	if pageID == uuid.Nil {
		return nil, pages.ErrPageRequired
	}
	return s.repo.ListVersions(ctx, pageID)
}

func (s *service) GetVersion(ctx context.Context, pageID uuid.UUID, version int) (*pages.Version, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	if !s.versioning {
		return nil, pages.ErrVersioningDisabled
	}
	if pageID == uuid.Nil {
		return nil, pages.ErrPageRequired
	}
	if version <= 0 {
		return nil, pages.ErrVersionRequired
	}
	return s.repo.GetVersion(ctx, pageID, version)
}

func (s *service) RestoreVersion(ctx context.Context, req pages.RestoreVersionRequest) (*pages.Page, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	if !s.versioning {
		return nil, pages.ErrVersioningDisabled
	}
	if req.PageID == uuid.Nil {
		return nil, pages.ErrPageRequired
	}
	if req.Version <= 0 {
		return nil, pages.ErrVersionRequired
	}

	page, err := s.repo.GetByID(ctx, req.PageID)
	if err != nil {
		return nil, err
	}
	target, err := s.repo.GetVersion(ctx, req.PageID, req.Version)
	if err != nil {
		return nil, err
	}

	// Restored data is not re-validated against the current component
	// definitions: the snapshot froze data that was valid when written and
	// schema drift since then is accepted.
	if err := applySnapshot(page, target.Snapshot, s.id, s.now()); err != nil {
		return nil, err
	}
	page.Components, err = s.resolveRestoredComponents(ctx, page.Components, target.Snapshot)
	if err != nil {
		return nil, err
	}
	if req.RestoredBy != nil {
		page.UpdatedBy = req.RestoredBy
	}

	summary := fmt.Sprintf("Restored from version %d", target.Version)
	version, err := s.versionFor(page, summary, req.RestoredBy)
	if err != nil {
		return nil, err
	}

	restored, err := s.repo.Restore(ctx, page, version)
	if err != nil {
		return nil, err
	}

	s.logger.Info("page restored", "slug", restored.Slug, "from_version", target.Version)
	return restored, nil
}

// resolveRestoredComponents re-resolves snapshot component references against
// the live definitions: by ID first, then by the slug frozen into the
// snapshot. Entries whose definition no longer exists are dropped, so a
// restore never fails because a component was deleted after the snapshot.
func (s *service) resolveRestoredComponents(ctx context.Context, components []*pages.Component, snapshot map[string]any) ([]*pages.Component, error) {
	if s.schemas == nil || len(components) == 0 {
		return components, nil
	}

	slugs := snapshotComponentSlugs(snapshot["components"])
	kept := make([]*pages.Component, 0, len(components))
	for index, component := range components {
		definition, err := s.schemas.Get(ctx, component.ComponentID)
		if err == nil && definition.Kind == schema.KindComponent {
			component.Definition = definition
			kept = append(kept, component)
			continue
		}
		var notFound *schema.NotFoundError
		if err != nil && !errors.As(err, &notFound) {
			return nil, err
		}

		if index < len(slugs) && slugs[index] != "" {
			definition, slugErr := s.schemas.GetBySlug(ctx, schema.KindComponent, slugs[index])
			if slugErr == nil {
				component.ComponentID = definition.ID
				component.Definition = definition
				kept = append(kept, component)
				continue
			}
			if !errors.As(slugErr, &notFound) {
				return nil, slugErr
			}
		}

		s.logger.Warn("restored component skipped", "component_id", component.ComponentID)
	}
	return kept, nil
}

func (s *service) CompareVersions(ctx context.Context, req pages.CompareVersionsRequest) (*pages.VersionDiff, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("pages service unavailable")
	}
	if !s.versioning {
		return nil, pages.ErrVersioningDisabled
	}
	if req.PageID == uuid.Nil {
		return nil, pages.ErrPageRequired
	}
	if req.From <= 0 || req.To <= 0 {
		return nil, pages.ErrVersionRequired
	}

	from, err := s.repo.GetVersion(ctx, req.PageID, req.From)
	if err != nil {
		return nil, err
	}
	to, err := s.repo.GetVersion(ctx, req.PageID, req.To)
	if err != nil {
		return nil, err
	}

	return &pages.VersionDiff{
		PageID:  req.PageID,
		From:    from.Version,
		To:      to.Version,
		Changes: diffSnapshots(from.Snapshot, to.Snapshot),
	}, nil
}

// resolveSlug derives, validates and uniquifies the page slug. Same shape
// as the schema slug resolution: explicit slugs must already be kebab-case,
// derived ones come from the title, and the unique index remains the final
// arbiter under concurrent writes.
func (s *service) resolveSlug(ctx context.Context, explicit, title string, selfID uuid.UUID) (string, error) {
	base := strings.TrimSpace(explicit)
	if base != "" {
		if !schema.IsValidSlug(base) {
			return "", pages.ErrSlugInvalid
		}
	} else {
		base = schema.DeriveSlug(title)
	}
	if base == "" {
		return "", pages.ErrSlugRequired
	}

	existing, err := s.repo.ListSlugs(ctx)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(existing))
	for id, slug := range existing {
		if id == selfID {
			continue
		}
		taken[slug] = true
	}

	return schema.UniqueSlug(base, func(candidate string) bool {
		return taken[candidate]
	}), nil
}

// buildComponents resolves each referenced component definition and
// validates the instance data against its fields, in array order. Nothing
// is persisted here; a failure on item k rejects the whole set.
func (s *service) buildComponents(ctx context.Context, pageID uuid.UUID, inputs []pages.ComponentInput) ([]*pages.Component, error) {
	if s.schemas == nil && len(inputs) > 0 {
		return nil, errors.New("pages service: schema service not configured")
	}

	built := make([]*pages.Component, 0, len(inputs))
	now := s.now()

	for index, input := range inputs {
		if input.ComponentID == uuid.Nil {
			return nil, pages.ErrComponentRequired
		}

		definition, err := s.schemas.Get(ctx, input.ComponentID)
		if err != nil {
			var notFound *schema.NotFoundError
			if errors.As(err, &notFound) {
				return nil, &pages.NotFoundError{Resource: "component", Key: input.ComponentID.String()}
			}
			return nil, err
		}
		if definition.Kind != schema.KindComponent {
			return nil, pages.ErrNotAComponent
		}

		if err := validation.ValidateComponentData(definition.Fields, input.Data); err != nil {
			return nil, componentValidationError(definition.ID, err)
		}

		order := index
		if input.Order != nil {
			order = *input.Order
		}

		built = append(built, &pages.Component{
			ID:          s.id(),
			PageID:      pageID,
			ComponentID: definition.ID,
			Data:        input.Data,
			Order:       order,
			CreatedAt:   now,
			UpdatedAt:   now,
			Definition:  definition,
		})
	}

	return built, nil
}

// versionFor freezes the page state into the next history entry, or nil
// when versioning is off. The version author falls back through the page's
// audit fields when the caller does not supply one.
func (s *service) versionFor(page *pages.Page, summary string, actor *uuid.UUID) (*pages.Version, error) {
	if !s.versioning {
		return nil, nil
	}

	snapshot := buildSnapshot(page)
	if err := validation.ValidateSnapshot(snapshot); err != nil {
		return nil, err
	}

	if actor == nil {
		actor = page.UpdatedBy
	}
	if actor == nil {
		actor = page.CreatedBy
	}

	return &pages.Version{
		ID:            s.id(),
		PageID:        page.ID,
		Snapshot:      snapshot,
		ChangeSummary: &summary,
		CreatedBy:     actor,
		CreatedAt:     s.now(),
	}, nil
}

func componentValidationError(componentID uuid.UUID, err error) error {
	issues := validation.Issues(err)
	mapped := make([]pages.FieldIssue, 0, len(issues))
	for _, issue := range issues {
		mapped = append(mapped, pages.FieldIssue{Field: issue.Field, Message: issue.Message})
	}
	return &pages.ValidationError{ComponentID: componentID, Issues: mapped}
}
