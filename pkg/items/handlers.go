package items

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/collie/pkg/httputil"
)

// Handlers exposes item reads and status updates over HTTP.
type Handlers struct {
	store *Store
}

// NewHandlers creates item handlers over the given store.
func NewHandlers(store *Store) *Handlers {
	return &Handlers{store: store}
}

// RegisterRoutes registers the item routes.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/items", h.list).Methods("GET")
	router.HandleFunc("/items", h.create).Methods("POST")
	router.HandleFunc("/items", h.updateAll).Methods("PATCH")
	router.HandleFunc("/items/count", h.count).Methods("GET")
	router.HandleFunc("/items/{id}", h.update).Methods("PATCH")
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req ItemToCreate
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Title == "" || req.Link == "" {
		httputil.WriteBadRequest(w, "title and link are required")
		return
	}
	if !httputil.RequireNonZero(w, req.Feed, "feed") {
		return
	}

	inserted, err := h.store.Create(r.Context(), &req)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if !inserted {
		httputil.WriteSuccess(w, map[string]bool{"created": false})
		return
	}
	httputil.WriteCreated(w, map[string]bool{"created": true})
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}
	all, err := h.store.List(r.Context(), filter)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if all == nil {
		all = []Item{}
	}
	httputil.WriteSuccess(w, all)
}

func (h *Handlers) count(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseFilter(w, r)
	if !ok {
		return
	}
	count, err := h.store.Count(r.Context(), filter)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]int64{"count": count})
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	var req ItemToUpdate
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		httputil.WriteBadRequest(w, "status must be 'unread' or 'read'")
		return
	}

	err := h.store.Update(r.Context(), id, &req)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteNotFoundError(w, "item not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]bool{"updated": true})
}

func (h *Handlers) updateAll(w http.ResponseWriter, r *http.Request) {
	var req ItemToUpdateAll
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		httputil.WriteBadRequest(w, "status must be 'unread' or 'read'")
		return
	}

	updated, err := h.store.UpdateAll(r.Context(), &req)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]int64{"updated": updated})
}

// parseFilter builds an item filter from query parameters.
func parseFilter(w http.ResponseWriter, r *http.Request) (*Filter, bool) {
	var filter Filter

	if str := r.URL.Query().Get("status"); str != "" {
		status := Status(str)
		if !status.Valid() {
			httputil.WriteBadRequest(w, "status must be 'unread' or 'read'")
			return nil, false
		}
		filter.Status = &status
	}
	if str := r.URL.Query().Get("is_saved"); str != "" {
		saved, err := httputil.ParseQueryBool(r, "is_saved", false)
		if err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return nil, false
		}
		filter.IsSaved = &saved
	}
	if str := r.URL.Query().Get("feed"); str != "" {
		feed, err := httputil.ParseQueryInt64(r, "feed", 0)
		if err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return nil, false
		}
		filter.Feed = &feed
	}
	if str := r.URL.Query().Get("limit"); str != "" {
		limit, err := httputil.ParseQueryInt64(r, "limit", 0)
		if err != nil || limit <= 0 {
			httputil.WriteBadRequest(w, "limit must be a positive integer")
			return nil, false
		}
		filter.Limit = &limit
		if str := r.URL.Query().Get("offset"); str != "" {
			offset, err := httputil.ParseQueryInt64(r, "offset", 0)
			if err != nil || offset < 0 {
				httputil.WriteBadRequest(w, "offset must be a non-negative integer")
				return nil, false
			}
			filter.Offset = &offset
		}
	}
	return &filter, true
}
