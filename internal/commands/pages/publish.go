package pagescmd

import (
	"context"
	"time"

	"github.com/compositor-cms/compositor/internal/commands"
	"github.com/compositor-cms/compositor/internal/logging"
	"github.com/compositor-cms/compositor/pages"
	"github.com/compositor-cms/compositor/pkg/interfaces"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const publishPageMessageType = "compositor.pages.publish"

// PublishPageCommand transitions a page into the published status, stamping the
// publication time when the caller does not provide one.
type PublishPageCommand struct {
	PageID      uuid.UUID  `json:"page_id"`
	PublishedBy *uuid.UUID `json:"published_by,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Type implements command.Message.
func (PublishPageCommand) Type() string { return publishPageMessageType }

// Validate ensures the command captures the required identifiers before reaching handlers.
func (m PublishPageCommand) Validate() error {
	errs := validation.Errors{}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("compositor.pages.publish.page_id_required", "page_id is required")
	}
	if m.PublishedBy != nil && *m.PublishedBy == uuid.Nil {
		errs["published_by"] = validation.NewError("compositor.pages.publish.published_by_invalid", "published_by must be a valid identifier when provided")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// PublishPageHandler publishes pages via the page service using the shared handler foundation.
type PublishPageHandler struct {
	inner *commands.Handler[PublishPageCommand]
}

// NewPublishPageHandler constructs a handler wired to the provided page service.
func NewPublishPageHandler(service pages.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishPageCommand]) *PublishPageHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg PublishPageCommand) error {
		status := pages.StatusPublished
		req := pages.UpdatePageRequest{
			ID:          msg.PageID,
			Status:      &status,
			PublishedAt: msg.PublishedAt,
			UpdatedBy:   msg.PublishedBy,
		}
		_, err := service.Update(ctx, req)
		return err
	}

	handlerOpts := []commands.HandlerOption[PublishPageCommand]{
		commands.WithLogger[PublishPageCommand](baseLogger),
		commands.WithOperation[PublishPageCommand]("pages.publish"),
		commands.WithMessageFields(func(msg PublishPageCommand) map[string]any {
			fields := map[string]any{}
			if msg.PageID != uuid.Nil {
				fields["page_id"] = msg.PageID
			}
			if msg.PublishedBy != nil && *msg.PublishedBy != uuid.Nil {
				fields["published_by"] = *msg.PublishedBy
			}
			if msg.PublishedAt != nil && !msg.PublishedAt.IsZero() {
				fields["published_at"] = msg.PublishedAt
			}
			if len(fields) == 0 {
				return nil
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishPageCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishPageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PublishPageCommand].Execute.
func (h *PublishPageHandler) Execute(ctx context.Context, msg PublishPageCommand) error {
	return h.inner.Execute(ctx, msg)
}
