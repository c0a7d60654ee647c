package schema

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/compositor-cms/compositor/fields"
	"github.com/compositor-cms/compositor/internal/logging"
	"github.com/compositor-cms/compositor/pkg/interfaces"
	"github.com/compositor-cms/compositor/schema"
)

// Option mutates the schema builder service.
type Option func(*service)

// WithClock overrides the clock used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the ID generator for new schemas and fields.
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

// NewService constructs the schema builder backed by the supplied repository.
func NewService(repo Repository, opts ...Option) schema.Service {
	svc := &service{
		repo:   repo,
		now:    func() time.Time { return time.Now().UTC() },
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

type service struct {
	repo   Repository
	now    func() time.Time
	id     IDGenerator
	logger interfaces.Logger
}

func (s *service) Build(ctx context.Context, req schema.BuildSchemaRequest) (*schema.Schema, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("schema service unavailable")
	}
	if !req.Kind.Valid() {
		return nil, schema.ErrKindInvalid
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, schema.ErrNameRequired
	}

	now := s.now()
	record := &schema.Schema{
		ID:          s.id(),
		Kind:        req.Kind,
		Name:        name,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		record.IsActive = *req.IsActive
	}

	slug, err := s.resolveSlug(ctx, req.Kind, req.Slug, name, record.ID)
	if err != nil {
		return nil, err
	}
	record.Slug = slug

	record.Fields, err = s.prepareFields(record, req.Fields)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("schema built", "kind", created.Kind, "slug", created.Slug, "fields", len(created.Fields))
	return created, nil
}

func (s *service) Update(ctx context.Context, req schema.UpdateSchemaRequest) (*schema.Schema, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("schema service unavailable")
	}
	if req.ID == uuid.Nil {
		return nil, schema.ErrIDRequired
	}

	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		record.Name = strings.TrimSpace(*req.Name)
	}
	if record.Name == "" {
		return nil, schema.ErrNameRequired
	}
	if req.Description != nil {
		record.Description = req.Description
	}
	if req.IsActive != nil {
		record.IsActive = *req.IsActive
	}

	requested := record.Slug
	if req.Slug != nil {
		requested = strings.TrimSpace(*req.Slug)
	}
	slug, err := s.resolveSlug(ctx, record.Kind, requested, record.Name, record.ID)
	if err != nil {
		return nil, err
	}
	record.Slug = slug

	record.Fields, err = s.prepareFields(record, req.Fields)
	if err != nil {
		return nil, err
	}
	record.UpdatedAt = s.now()

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("schema updated", "kind", updated.Kind, "slug", updated.Slug, "fields", len(updated.Fields))
	return updated, nil
}

func (s *service) Delete(ctx context.Context, req schema.DeleteSchemaRequest) error {
	if s == nil || s.repo == nil {
		return errors.New("schema service unavailable")
	}
	if req.ID == uuid.Nil {
		return schema.ErrIDRequired
	}
	return s.repo.Delete(ctx, req.ID, req.HardDelete)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*schema.Schema, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("schema service unavailable")
	}
	if id == uuid.Nil {
		return nil, schema.ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, kind schema.Kind, slug string) (*schema.Schema, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("schema service unavailable")
	}
	if !kind.Valid() {
		return nil, schema.ErrKindInvalid
	}
	return s.repo.GetBySlug(ctx, kind, strings.TrimSpace(slug))
}

func (s *service) List(ctx context.Context, kind schema.Kind) ([]*schema.Schema, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("schema service unavailable")
	}
	if !kind.Valid() {
		return nil, schema.ErrKindInvalid
	}
	return s.repo.List(ctx, kind)
}

func (s *service) Search(ctx context.Context, kind schema.Kind, query string) ([]*schema.Schema, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("schema service unavailable")
	}
	if !kind.Valid() {
		return nil, schema.ErrKindInvalid
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.List(ctx, kind)
	}
	return s.repo.Search(ctx, kind, query)
}

// resolveSlug derives, validates and uniquifies the schema slug. Explicit
// slugs must already be kebab-case; derived ones come from the name. The
// suffix pre-check runs against live slugs of the same kind excluding the
// record itself; the store's unique index remains the final arbiter under
// concurrency.
func (s *service) resolveSlug(ctx context.Context, kind schema.Kind, explicit, name string, selfID uuid.UUID) (string, error) {
	base := strings.TrimSpace(explicit)
	if base != "" {
		if !schema.IsValidSlug(base) {
			return "", schema.ErrSlugInvalid
		}
	} else {
		base = schema.DeriveSlug(name)
	}
	if base == "" {
		return "", schema.ErrSlugRequired
	}

	existing, err := s.repo.ListSlugs(ctx, kind)
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

// prepareFields validates and normalizes the field payload in array order.
// Field slugs are uniquified within this single build operation only.
func (s *service) prepareFields(record *schema.Schema, inputs []schema.FieldInput) ([]*schema.Field, error) {
	prepared := make([]*schema.Field, 0, len(inputs))
	used := make(map[string]bool, len(inputs))
	now := s.now()

	for index, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, &schema.FieldError{Err: schema.ErrFieldNameRequired}
		}

		slug := strings.TrimSpace(input.Slug)
		if slug == "" {
			slug = schema.DeriveSlug(name)
		}
		if slug == "" {
			return nil, &schema.FieldError{FieldName: name, Err: schema.ErrFieldSlugRequired}
		}
		slug = schema.UniqueSlug(slug, func(candidate string) bool {
			return used[candidate]
		})
		used[slug] = true

		dataType, err := fields.Parse(input.DataType)
		if err != nil {
			return nil, &schema.FieldError{FieldName: name, Err: err}
		}

		order := index
		if input.Order != nil {
			order = *input.Order
		}

		prepared = append(prepared, &schema.Field{
			ID:           s.id(),
			SchemaID:     record.ID,
			Name:         name,
			Slug:         slug,
			DataType:     dataType,
			Config:       cloneMap(input.Config),
			IsRequired:   input.IsRequired,
			DefaultValue: input.DefaultValue,
			HelpText:     input.HelpText,
			Order:        order,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	return prepared, nil
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
