package collections

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/cookbook/internal/recipeid"
)

// Handler handles HTTP requests for collections.
type Handler struct {
	store *Store
}

// NewHandler creates a new collections handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// HandleList handles GET /v1/collections
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list collections")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": list})
}

// HandleCreate handles POST /v1/collections
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	id, err := h.store.Create(r.Context(), req.Name, req.Icon)
	if err != nil {
		writeStoreError(w, err, "Failed to create collection")
		return
	}

	c, _, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to read collection")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleRename handles PATCH /v1/collections/{id}
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	if err := h.store.Rename(r.Context(), id, req.Name, req.Icon); err != nil {
		writeStoreError(w, err, "Failed to rename collection")
		return
	}

	c, _, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to read collection")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /v1/collections/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err, "Failed to delete collection")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRecipes handles GET /v1/collections/{id}/recipes
func (h *Handler) HandleRecipes(w http.ResponseWriter, r *http.Request) {
	ids, found, err := h.store.RecipesIn(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to read collection")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
}

// HandleAddRecipe handles PUT /v1/collections/{id}/recipes/{recipeId}
func (h *Handler) HandleAddRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := recipeid.Parse(r.PathValue("recipeId"))
	if recipeID.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "recipe id is required")
		return
	}
	if err := h.store.AddRecipe(r.Context(), r.PathValue("id"), recipeID); err != nil {
		writeStoreError(w, err, "Failed to add recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveRecipe handles DELETE /v1/collections/{id}/recipes/{recipeId}
func (h *Handler) HandleRemoveRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := recipeid.Parse(r.PathValue("recipeId"))
	if err := h.store.RemoveRecipe(r.Context(), r.PathValue("id"), recipeID); err != nil {
		writeStoreError(w, err, "Failed to remove recipe")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleForRecipe handles GET /v1/recipes/{id}/collections
func (h *Handler) HandleForRecipe(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.CollectionsContaining(r.Context(), recipeid.Parse(r.PathValue("id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list collections")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": list})
}

func writeStoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ErrDuplicateCollection):
		writeError(w, http.StatusConflict, "duplicate_collection", err.Error())
	case errors.Is(err, ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
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
