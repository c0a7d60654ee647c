package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/compositor-cms/compositor/content"
	"github.com/compositor-cms/compositor/fields"
	"github.com/compositor-cms/compositor/pages"
	"github.com/compositor-cms/compositor/schema"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message,omitempty"`
	Issues  []pages.FieldIssue `json:"issues,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	var schemaNotFound *schema.NotFoundError
	if errors.As(err, &schemaNotFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: schemaNotFound.Error(),
		}
	}

	var pageNotFound *pages.NotFoundError
	if errors.As(err, &pageNotFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: pageNotFound.Error(),
		}
	}

	var itemNotFound *content.NotFoundError
	if errors.As(err, &itemNotFound) {
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: itemNotFound.Error(),
		}
	}

	if errors.Is(err, schema.ErrSlugExists) || errors.Is(err, pages.ErrSlugExists) {
		return http.StatusConflict, errorResponse{
			Error:   "conflict",
			Message: err.Error(),
		}
	}

	var validationErr *pages.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: validationErr.Error(),
			Issues:  validationErr.Issues,
		}
	}
	if errors.Is(err, pages.ErrValidationFailed) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		}
	}

	if errors.Is(err, pages.ErrVersioningDisabled) {
		return http.StatusNotImplemented, errorResponse{
			Error:   "feature_disabled",
			Message: err.Error(),
		}
	}

	if errors.Is(err, schema.ErrNameRequired) ||
		errors.Is(err, schema.ErrKindInvalid) ||
		errors.Is(err, schema.ErrIDRequired) ||
		errors.Is(err, schema.ErrSlugRequired) ||
		errors.Is(err, schema.ErrSlugInvalid) ||
		errors.Is(err, schema.ErrFieldNameRequired) ||
		errors.Is(err, schema.ErrFieldSlugRequired) ||
		errors.Is(err, fields.ErrUnknownDataType) ||
		errors.Is(err, pages.ErrTitleRequired) ||
		errors.Is(err, pages.ErrSlugRequired) ||
		errors.Is(err, pages.ErrSlugInvalid) ||
		errors.Is(err, pages.ErrStatusInvalid) ||
		errors.Is(err, pages.ErrPageRequired) ||
		errors.Is(err, pages.ErrVersionRequired) ||
		errors.Is(err, pages.ErrComponentRequired) ||
		errors.Is(err, pages.ErrNotAComponent) ||
		errors.Is(err, content.ErrCollectionRequired) ||
		errors.Is(err, content.ErrItemRequired) ||
		errors.Is(err, content.ErrNotACollection) {
		return http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, err
	}
	return parsed, nil
}

func parseIntPath(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, errors.New("number required")
	}
	return strconv.Atoi(trimmed)
}
