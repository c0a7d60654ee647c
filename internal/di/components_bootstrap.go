package di

import (
	"context"
	"errors"
	"strings"

	"github.com/compositor-cms/compositor/internal/identity"
	"github.com/compositor-cms/compositor/internal/logging"
	"github.com/compositor-cms/compositor/internal/runtimeconfig"
	schemasvc "github.com/compositor-cms/compositor/internal/schema"
	"github.com/compositor-cms/compositor/schema"
	"github.com/google/uuid"
)

// InitializeComponents seeds component definitions declared in configuration.
// The bootstrap is idempotent: existing components (matched by slug) are
// updated in place, missing ones are created with deterministic identifiers
// so repeated bootstraps against the same store converge on the same rows.
func (c *Container) InitializeComponents(ctx context.Context) error {
	logger := logging.ModuleLogger(c.loggerProvider, "compositor.bootstrap")
	if len(c.Config.Components) == 0 {
		logger.Debug("components.bootstrap.skip", "reason", "no_definitions")
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Info("components.bootstrap.start", "count", len(c.Config.Components))

	for _, def := range c.Config.Components {
		slug := bootstrapSlug(def.Slug, def.Name)
		if slug == "" {
			return schema.ErrSlugRequired
		}

		fieldInputs := bootstrapFieldInputs(def.Fields)
		description := strings.TrimSpace(def.Description)
		var descPtr *string
		if description != "" {
			descPtr = &description
		}

		existing, err := c.schemaSvc.GetBySlug(ctx, schema.KindComponent, slug)
		if err != nil {
			var notFound *schema.NotFoundError
			if !errors.As(err, &notFound) {
				return err
			}

			// Build consumes one generated ID for the schema record and one
			// per field in payload order, so a queued generator yields stable
			// identifiers derived from the configured slugs.
			seeder := schemasvc.NewService(
				c.schemaRepo,
				schemasvc.WithIDGenerator(bootstrapIDQueue(slug, def.Fields)),
				schemasvc.WithLogger(logger),
			)
			created, err := seeder.Build(ctx, schema.BuildSchemaRequest{
				Kind:        schema.KindComponent,
				Name:        def.Name,
				Slug:        slug,
				Description: descPtr,
				Fields:      fieldInputs,
			})
			if err != nil {
				return err
			}
			logger.Info("components.bootstrap.create", "slug", created.Slug, "id", created.ID, "fields", len(created.Fields))
			continue
		}

		name := strings.TrimSpace(def.Name)
		update := schema.UpdateSchemaRequest{
			ID:     existing.ID,
			Fields: fieldInputs,
		}
		if name != "" {
			update.Name = &name
		}
		if descPtr != nil {
			update.Description = descPtr
		}
		updated, err := c.schemaSvc.Update(ctx, update)
		if err != nil {
			return err
		}
		logger.Info("components.bootstrap.update", "slug", updated.Slug, "id", updated.ID, "fields", len(updated.Fields))
	}

	logger.Info("components.bootstrap.complete", "count", len(c.Config.Components))
	return nil
}

func bootstrapSlug(explicit, name string) string {
	slug := strings.TrimSpace(explicit)
	if slug != "" {
		return slug
	}
	return schema.DeriveSlug(name)
}

func bootstrapFieldInputs(fields []runtimeconfig.ComponentFieldConfig) []schema.FieldInput {
	inputs := make([]schema.FieldInput, 0, len(fields))
	for _, field := range fields {
		inputs = append(inputs, schema.FieldInput{
			Name:       field.Name,
			Slug:       field.Slug,
			DataType:   field.DataType,
			Config:     field.Config,
			IsRequired: field.IsRequired,
			Order:      field.Order,
		})
	}
	return inputs
}

func bootstrapIDQueue(slug string, fields []runtimeconfig.ComponentFieldConfig) func() uuid.UUID {
	componentID := identity.ComponentUUID(slug)
	ids := make([]uuid.UUID, 0, len(fields)+1)
	ids = append(ids, componentID)
	for _, field := range fields {
		fieldSlug := bootstrapSlug(field.Slug, field.Name)
		ids = append(ids, identity.ComponentFieldUUID(componentID, fieldSlug))
	}

	next := 0
	return func() uuid.UUID {
		if next < len(ids) {
			id := ids[next]
			next++
			return id
		}
		return uuid.New()
	}
}
