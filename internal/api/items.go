package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/cakedek/myitemlibrary/internal/model"
	"github.com/cakedek/myitemlibrary/internal/store"
)

// ItemsHandler serves the read and delete endpoints.
type ItemsHandler struct {
	Store store.Store
}

// List handles GET /items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	items, err := h.Store.ListItems(r.Context())
	if err != nil {
		internalError(w, r, "failed to list items", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// ListByPlayer handles GET /items/{player}.
func (h *ItemsHandler) ListByPlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	parts, err := pathSegments(r)
	if err != nil {
		sendResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	// The path is already decoded; a second form-decoding pass turns "+"
	// into a space.
	player, err := url.QueryUnescape(parts[2])
	if err != nil {
		badRequest(w, "invalid player name encoding")
		return
	}

	items, err := h.Store.ListItemsByPlayer(r.Context(), player)
	if err != nil {
		internalError(w, r, "failed to list items for player", err)
		return
	}
	if len(items) == 0 {
		sendResponse(w, http.StatusNotFound, "No items found for player: "+player)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Operations handles GET and DELETE /item/{id}. The id is validated before
// the method.
func (h *ItemsHandler) Operations(w http.ResponseWriter, r *http.Request) {
	parts, err := pathSegments(r)
	if err != nil {
		sendResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	// Ids are 32-bit; larger values are rejected like non-numbers.
	id, err := strconv.ParseInt(parts[2], 10, 32)
	if err != nil || id <= 0 {
		sendResponse(w, http.StatusBadRequest, "Invalid Item ID: must be a positive integer")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		methodNotAllowed(w)
	}
}

func (h *ItemsHandler) get(w http.ResponseWriter, r *http.Request, id int64) {
	item, err := h.Store.GetItem(r.Context(), id)
	if err != nil {
		internalError(w, r, "failed to get item", err)
		return
	}
	if item == nil {
		sendResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

func (h *ItemsHandler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	deleted, err := h.Store.DeleteItem(r.Context(), id)
	if err != nil {
		internalError(w, r, "failed to delete item", err)
		return
	}
	if !deleted {
		sendResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	sendResponse(w, http.StatusOK, "Item deleted successfully")
}
