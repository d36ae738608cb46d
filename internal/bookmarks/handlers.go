package bookmarks

import (
	"encoding/json"
	"net/http"

	"github.com/fdg312/cookbook/internal/recipeid"
)

// Handler handles HTTP requests for bookmarks.
type Handler struct {
	store *Store
}

// NewHandler creates a new bookmarks handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

type stateResponse struct {
	ID         recipeid.ID `json:"id"`
	Bookmarked bool        `json:"bookmarked"`
}

// HandleList handles GET /v1/bookmarks
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list bookmarks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
}

// HandleToggle handles POST /v1/bookmarks/{id}/toggle
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	state, err := h.store.Toggle(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to toggle bookmark")
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{ID: id, Bookmarked: state})
}

// HandleAdd handles PUT /v1/bookmarks/{id}
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Add(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to add bookmark")
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{ID: id, Bookmarked: true})
}

// HandleRemove handles DELETE /v1/bookmarks/{id}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Remove(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to remove bookmark")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (recipeid.ID, bool) {
	id := recipeid.Parse(r.PathValue("id"))
	if id.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "recipe id is required")
		return id, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
