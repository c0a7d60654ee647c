package pagescmd

import (
	"context"

	"github.com/compositor-cms/compositor/internal/commands"
	"github.com/compositor-cms/compositor/internal/logging"
	"github.com/compositor-cms/compositor/pages"
	"github.com/compositor-cms/compositor/pkg/interfaces"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const restorePageVersionMessageType = "compositor.pages.version.restore"

// RestorePageVersionCommand requests that a historical page version be restored.
type RestorePageVersionCommand struct {
	PageID     uuid.UUID  `json:"page_id"`
	Version    int        `json:"version"`
	RestoredBy *uuid.UUID `json:"restored_by,omitempty"`
}

// Type implements command.Message.
func (RestorePageVersionCommand) Type() string { return restorePageVersionMessageType }

// Validate ensures the command carries the required identifiers.
func (m RestorePageVersionCommand) Validate() error {
	errs := validation.Errors{}
	if m.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("compositor.pages.version.restore.page_id_required", "page_id is required")
	}
	if m.Version <= 0 {
		errs["version"] = validation.NewError("compositor.pages.version.restore.version_invalid", "version must be greater than zero")
	}
	if m.RestoredBy != nil && *m.RestoredBy == uuid.Nil {
		errs["restored_by"] = validation.NewError("compositor.pages.version.restore.restored_by_invalid", "restored_by must be a valid identifier when provided")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RestorePageVersionHandler restores historical versions via the page service.
type RestorePageVersionHandler struct {
	inner *commands.Handler[RestorePageVersionCommand]
}

// NewRestorePageVersionHandler constructs a handler wired to the provided page service.
func NewRestorePageVersionHandler(service pages.Service, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[RestorePageVersionCommand]) *RestorePageVersionHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg RestorePageVersionCommand) error {
		if !gates.versioningEnabled() {
			return pages.ErrVersioningDisabled
		}

		req := pages.RestoreVersionRequest{
			PageID:     msg.PageID,
			Version:    msg.Version,
			RestoredBy: msg.RestoredBy,
		}
		_, err := service.RestoreVersion(ctx, req)
		return err
	}

	handlerOpts := []commands.HandlerOption[RestorePageVersionCommand]{
		commands.WithLogger[RestorePageVersionCommand](baseLogger),
		commands.WithOperation[RestorePageVersionCommand]("pages.version.restore"),
		commands.WithMessageFields(func(msg RestorePageVersionCommand) map[string]any {
			fields := map[string]any{}
			if msg.PageID != uuid.Nil {
				fields["page_id"] = msg.PageID
			}
			if msg.Version > 0 {
				fields["version"] = msg.Version
			}
			if msg.RestoredBy != nil && *msg.RestoredBy != uuid.Nil {
				fields["restored_by"] = *msg.RestoredBy
			}
			if len(fields) == 0 {
				return nil
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RestorePageVersionHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RestorePageVersionCommand].Execute.
func (h *RestorePageVersionHandler) Execute(ctx context.Context, msg RestorePageVersionCommand) error {
	return h.inner.Execute(ctx, msg)
}
