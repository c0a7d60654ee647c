package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/compositor-cms/compositor/schema"
	"github.com/google/uuid"
)

type schemaFieldPayload struct {
	Name         string         `json:"name"`
	Slug         string         `json:"slug,omitempty"`
	DataType     string         `json:"data_type"`
	Config       map[string]any `json:"config,omitempty"`
	IsRequired   bool           `json:"is_required,omitempty"`
	DefaultValue *string        `json:"default_value,omitempty"`
	HelpText     *string        `json:"help_text,omitempty"`
	Order        *int           `json:"order,omitempty"`
}

type schemaCreatePayload struct {
	Name        string               `json:"name"`
	Slug        string               `json:"slug,omitempty"`
	Description *string              `json:"description,omitempty"`
	IsActive    *bool                `json:"is_active,omitempty"`
	Fields      []schemaFieldPayload `json:"fields"`
}

type schemaUpdatePayload struct {
	Name        *string              `json:"name,omitempty"`
	Slug        *string              `json:"slug,omitempty"`
	Description *string              `json:"description,omitempty"`
	IsActive    *bool                `json:"is_active,omitempty"`
	Fields      []schemaFieldPayload `json:"fields"`
}

type schemaDeletePayload struct {
	HardDelete bool `json:"hard_delete,omitempty"`
}

func fieldInputsFromPayload(payloads []schemaFieldPayload) []schema.FieldInput {
	inputs := make([]schema.FieldInput, 0, len(payloads))
	for _, payload := range payloads {
		inputs = append(inputs, schema.FieldInput{
			Name:         payload.Name,
			Slug:         payload.Slug,
			DataType:     payload.DataType,
			Config:       payload.Config,
			IsRequired:   payload.IsRequired,
			DefaultValue: payload.DefaultValue,
			HelpText:     payload.HelpText,
			Order:        payload.Order,
		})
	}
	return inputs
}

func (api *AdminAPI) registerSchemaRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	routes := []struct {
		segment string
		kind    schema.Kind
	}{
		{"collections", schema.KindCollection},
		{"components", schema.KindComponent},
	}
	for _, route := range routes {
		root := joinPath(base, route.segment)
		kind := route.kind
		mux.HandleFunc("GET "+root, api.handleSchemaList(kind))
		mux.HandleFunc("POST "+root, api.handleSchemaCreate(kind))
		mux.HandleFunc("GET "+root+"/{id}", api.handleSchemaGet(kind))
		mux.HandleFunc("GET "+root+"/slug/{slug}", api.handleSchemaGetBySlug(kind))
		mux.HandleFunc("PUT "+root+"/{id}", api.handleSchemaUpdate(kind))
		mux.HandleFunc("DELETE "+root+"/{id}", api.handleSchemaDelete(kind))
	}
}

func (api *AdminAPI) handleSchemaList(kind schema.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api == nil || api.schemas == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
			return
		}
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		var (
			records []*schema.Schema
			err     error
		)
		if query == "" {
			records, err = api.schemas.List(r.Context(), kind)
		} else {
			records, err = api.schemas.Search(r.Context(), kind, query)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func (api *AdminAPI) handleSchemaCreate(kind schema.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api == nil || api.schemas == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
			return
		}
		var payload schemaCreatePayload
		if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
			return
		}
		record, err := api.schemas.Build(r.Context(), schema.BuildSchemaRequest{
			Kind:        kind,
			Name:        payload.Name,
			Slug:        payload.Slug,
			Description: payload.Description,
			IsActive:    payload.IsActive,
			Fields:      fieldInputsFromPayload(payload.Fields),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)
	}
}

func (api *AdminAPI) handleSchemaGet(kind schema.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api == nil || api.schemas == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
			return
		}
		id, err := parseUUID(r.PathValue("id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
			return
		}
		record, err := api.fetchSchema(r, id, kind)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func (api *AdminAPI) handleSchemaGetBySlug(kind schema.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api == nil || api.schemas == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
			return
		}
		record, err := api.schemas.GetBySlug(r.Context(), kind, r.PathValue("slug"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func (api *AdminAPI) handleSchemaUpdate(kind schema.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api == nil || api.schemas == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
			return
		}
		id, err := parseUUID(r.PathValue("id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
			return
		}
		if _, err := api.fetchSchema(r, id, kind); err != nil {
			writeError(w, err)
			return
		}
		var payload schemaUpdatePayload
		if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
			return
		}
		record, err := api.schemas.Update(r.Context(), schema.UpdateSchemaRequest{
			ID:          id,
			Name:        payload.Name,
			Slug:        payload.Slug,
			Description: payload.Description,
			IsActive:    payload.IsActive,
			Fields:      fieldInputsFromPayload(payload.Fields),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func (api *AdminAPI) handleSchemaDelete(kind schema.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if api == nil || api.schemas == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
			return
		}
		id, err := parseUUID(r.PathValue("id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
			return
		}
		if _, err := api.fetchSchema(r, id, kind); err != nil {
			writeError(w, err)
			return
		}
		var payload schemaDeletePayload
		if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
			return
		}
		if err := api.schemas.Delete(r.Context(), schema.DeleteSchemaRequest{ID: id, HardDelete: payload.HardDelete}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

// fetchSchema loads a schema by ID and hides records of the other kind so
// collection routes cannot read or mutate components and vice versa.
func (api *AdminAPI) fetchSchema(r *http.Request, id uuid.UUID, kind schema.Kind) (*schema.Schema, error) {
	record, err := api.schemas.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if record.Kind != kind {
		return nil, &schema.NotFoundError{Kind: kind, Key: id.String()}
	}
	return record, nil
}
