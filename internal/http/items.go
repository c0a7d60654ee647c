package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/compositor-cms/compositor/content"
)

type itemCreatePayload struct {
	Data        map[string]any `json:"data"`
	IsPublished bool           `json:"is_published,omitempty"`
	Order       *int           `json:"order,omitempty"`
}

type itemUpdatePayload struct {
	Data        map[string]any `json:"data,omitempty"`
	IsPublished *bool          `json:"is_published,omitempty"`
	Order       *int           `json:"order,omitempty"`
}

type itemDeletePayload struct {
	HardDelete bool `json:"hard_delete,omitempty"`
}

func (api *AdminAPI) registerItemRoutes(mux *http.ServeMux, base string) {
	if mux == nil {
		return
	}
	collections := joinPath(base, "collections")
	mux.HandleFunc("GET "+collections+"/{id}/items", api.handleItemList)
	mux.HandleFunc("POST "+collections+"/{id}/items", api.handleItemCreate)

	items := joinPath(base, "items")
	mux.HandleFunc("GET "+items+"/{id}", api.handleItemGet)
	mux.HandleFunc("PUT "+items+"/{id}", api.handleItemUpdate)
	mux.HandleFunc("DELETE "+items+"/{id}", api.handleItemDelete)
}

func (api *AdminAPI) handleItemList(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	collectionID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid collection id"})
		return
	}
	records, err := api.content.List(r.Context(), collectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (api *AdminAPI) handleItemCreate(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	collectionID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid collection id"})
		return
	}
	var payload itemCreatePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	record, err := api.content.Create(r.Context(), content.CreateItemRequest{
		CollectionID: collectionID,
		Data:         payload.Data,
		IsPublished:  payload.IsPublished,
		Order:        payload.Order,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (api *AdminAPI) handleItemGet(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	record, err := api.content.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handleItemUpdate(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	var payload itemUpdatePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	record, err := api.content.Update(r.Context(), content.UpdateItemRequest{
		ID:          id,
		Data:        payload.Data,
		IsPublished: payload.IsPublished,
		Order:       payload.Order,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (api *AdminAPI) handleItemDelete(w http.ResponseWriter, r *http.Request) {
	if api == nil || api.content == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
		return
	}
	var payload itemDeletePayload
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
		return
	}
	if err := api.content.Delete(r.Context(), content.DeleteItemRequest{ID: id, HardDelete: payload.HardDelete}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
