package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/fdg312/cookbook/internal/recipeid"
)

// Handler handles HTTP requests for the recipe catalog.
type Handler struct {
	catalog *Catalog
}

// NewHandler creates a new catalog handler.
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// HandleGet handles GET /v1/recipes/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := recipeid.Parse(r.PathValue("id"))
	if id.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "recipe id is required")
		return
	}

	recipe, ok := h.catalog.FindByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrRecipeNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// HandleCategories handles GET /v1/recipes/categories
func (h *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.catalog.Categories()
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// HandleReload handles POST /v1/recipes/reload
func (h *Handler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to reload catalog")
		return
	}
	writeJSON(w, http.StatusOK, h.catalog.Status())
}

// HandleStatus handles GET /v1/catalog/status
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Status())
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
