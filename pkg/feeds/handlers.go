package feeds

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/collie/pkg/httputil"
)

// Handlers exposes feed CRUD over HTTP. Every route is behind the session
// verification middleware; these handlers only translate requests into
// store calls.
type Handlers struct {
	store *Store
}

// NewHandlers creates feed handlers over the given store.
func NewHandlers(store *Store) *Handlers {
	return &Handlers{store: store}
}

// RegisterRoutes registers the feed routes.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/feeds", h.list).Methods("GET")
	router.HandleFunc("/feeds", h.create).Methods("POST")
	router.HandleFunc("/feeds/{id}", h.get).Methods("GET")
	router.HandleFunc("/feeds/{id}", h.update).Methods("PATCH")
	router.HandleFunc("/feeds/{id}", h.delete).Methods("DELETE")
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	var req FeedToCreate
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Title == "" || req.Link == "" {
		httputil.WriteBadRequest(w, "title and link are required")
		return
	}

	feed, err := h.store.Create(r.Context(), &req)
	if errors.Is(err, ErrDuplicateFeed) {
		httputil.WriteConflict(w, "feed with this title and link already exists")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteCreated(w, feed)
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.List(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	if all == nil {
		all = []Feed{}
	}
	httputil.WriteSuccess(w, all)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	feed, err := h.store.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteNotFoundError(w, "feed not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, feed)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	var req FeedToUpdate
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		httputil.WriteBadRequest(w, "status must be 'subscribed' or 'unsubscribed'")
		return
	}

	err := h.store.Update(r.Context(), id, &req)
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.WriteNotFoundError(w, "feed not found")
	case errors.Is(err, ErrDuplicateFeed):
		httputil.WriteConflict(w, "feed with this title and link already exists")
	case err != nil:
		httputil.WriteInternalError(w, err)
	default:
		httputil.WriteSuccess(w, map[string]bool{"updated": true})
	}
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}
	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		httputil.WriteNotFoundError(w, "feed not found")
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
