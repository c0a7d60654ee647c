package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/compositor-cms/compositor/pages"
	"github.com/google/uuid"
)

type pageComponentPayload struct {
	ComponentID uuid.UUID      `json:"component_id"`
	Data        map[string]any `json:"data"`
	Order       *int           `json:"order,omitempty"`
}

type pageCreatePayload struct {
	Title       string                 `json:"title"`
	Slug        string                 `json:"slug,omitempty"`
	IsHomepage  bool                   `json:"is_homepage,omitempty"`
	Status      string                 `json:"status,omitempty"`
	PublishedAt *time.Time             `json:"published_at,omitempty"`
	CreatedBy   *uuid.UUID             `json:"created_by,omitempty"`
	Components  []pageComponentPayload `json:"components,omitempty"`
}

type pageUpdatePayload struct {
	Title       *string                `json:"title,omitempty"`
	Slug        *string                `json:"slug,omitempty"`
	IsHomepage  *bool                  `json:"is_homepage,omitempty"`
	Status      *string                `json:"status,omitempty"`
	PublishedAt *time.Time             `json:"published_at,omitempty"`
	UpdatedBy   *uuid.UUID             `json:"updated_by,omitempty"`
	Components  []pageComponentPayload `json:"components,omitempty"`
}

type pageDeletePayload struct {
	HardDelete bool `json:"hard_delete,omitempty"`
}

type pageComponentsPayload struct {
	Components []pageComponentPayload `json:"components"`
	UpdatedBy  *uuid.UUID             `json:"updated_by,omitempty"`
}

type pageRestorePayload struct {
	RestoredBy *uuid.UUID `json:"restored_by,omitempty"`
}

func componentInputsFromPayload(payloads []pageComponentPayload) []pages.ComponentInput {
	if payloads == nil {
		return nil
	}
	inputs := make([]pages.ComponentInput, 0, len(payloads))
	for _, payload := range payloads {
		inputs = append(inputs, pages.ComponentInput{
			ComponentID: payload.ComponentID,
			Data:        payload.Data,
			Order:       payload.Order,
		})
	}
	return inputs
}

func (api *AdminAPI) registerPageRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	root := joinPath(base, "pages")
	mux.HandleFunc("GET "+root, api.handlePageList)
	mux.HandleFunc("POST "+root, api.handlePageCreate)
	mux.HandleFunc("GET "+root+"/{id}", api.handlePageGet)
	mux.HandleFunc("PUT "+root+"/{id}", api.handlePageUpdate)
	mux.HandleFunc("DELETE "+root+"/{id}", api.handlePageDelete)
	mux.HandleFunc("PUT "+root+"/{id}/components", api.handlePageAssignComponents)
	mux.HandleFunc("GET "+root+"/{id}/versions", api.handlePageVersionList)
	mux.HandleFunc("GET "+root+"/{id}/versions/diff", api.handlePageVersionDiff)
	mux.HandleFunc("GET "+root+"/{id}/versions/{version}", api.handlePageVersionGet)
	mux.HandleFunc("POST "+root+"/{id}/versions/{version}/restore", api.handlePageVersionRestore)
}

func (api *AdminAPI) handlePageList(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	var (
		records []*pages.Page
		err     error
	)
	if query == "" {
		records, err = api.pages.List(r.Context())
	} else {
		records, err = api.pages.Search(r.Context(), query)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (api *AdminAPI) handlePageCreate(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload pageCreatePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	record, err := api.pages.Create(r.Context(), pages.CreatePageRequest{
		Title:       payload.Title,
		Slug:        payload.Slug,
		IsHomepage:  payload.IsHomepage,
		Status:      payload.Status,
		PublishedAt: payload.PublishedAt,
		CreatedBy:   payload.CreatedBy,
		Components:  componentInputsFromPayload(payload.Components),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *AdminAPI) handlePageGet(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	record, err := api.pages.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handlePageUpdate(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	var payload pageUpdatePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	record, err := api.pages.Update(r.Context(), pages.UpdatePageRequest{
		ID:          id,
		Title:       payload.Title,
		Slug:        payload.Slug,
		IsHomepage:  payload.IsHomepage,
		Status:      payload.Status,
		PublishedAt: payload.PublishedAt,
		UpdatedBy:   payload.UpdatedBy,
		Components:  componentInputsFromPayload(payload.Components),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handlePageDelete(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	var payload pageDeletePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	if err := api.pages.Delete(r.Context(), pages.DeletePageRequest{ID: id, HardDelete: payload.HardDelete}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (api *AdminAPI) handlePageAssignComponents(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	var payload pageComponentsPayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	record, err := api.pages.AssignComponents(r.Context(), pages.AssignComponentsRequest{
		PageID:     id,
		Components: componentInputsFromPayload(payload.Components),
		UpdatedBy:  payload.UpdatedBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handlePageVersionList(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	records, err := api.pages.ListVersions(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (api *AdminAPI) handlePageVersionGet(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	version, err := parseIntPath(r.PathValue("version"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid version"})
		return
	}
	record, err := api.pages.GetVersion(r.Context(), id, version)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handlePageVersionRestore(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	version, err := parseIntPath(r.PathValue("version"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid version"})
		return
	}
	var payload pageRestorePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	record, err := api.pages.RestoreVersion(r.Context(), pages.RestoreVersionRequest{
		PageID:     id,
		Version:    version,
		RestoredBy: payload.RestoredBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handlePageVersionDiff(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.pages == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	from, err := parseIntPath(r.URL.Query().Get("from"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid from version"})
		return
	}
	to, err := parseIntPath(r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid to version"})
		return
	}
	diff, err := api.pages.CompareVersions(r.Context(), pages.CompareVersionsRequest{
		PageID: id,
		From:   from,
		To:     to,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, diff)
}
