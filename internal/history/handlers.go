package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/recipeid"
)

const defaultRecentLimit = 10

// Handler handles HTTP requests for cook history.
type Handler struct {
	store *Store
}

// NewHandler creates a new history handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// HandleAll handles GET /v1/history
func (h *Handler) HandleAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.store.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load cook history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": all})
}

// HandleRecent handles GET /v1/history/recent?limit=
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	recent, err := h.store.RecentlyCooked(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load recently cooked")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recent": recent})
}

// HandleGet handles GET /v1/history/{recipeId}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathRecipeID(w, r)
	if !ok {
		return
	}
	rec, found, err := h.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load cook history")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", ErrRecipeNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleDeleteRecipe handles DELETE /v1/history/{recipeId}
func (h *Handler) HandleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := pathRecipeID(w, r)
	if !ok {
		return
	}
	removed, err := h.store.DeleteForRecipe(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete cook history")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "not_found", ErrRecipeNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddEntry handles POST /v1/history/{recipeId}/entries
func (h *Handler) HandleAddEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathRecipeID(w, r)
	if !ok {
		return
	}

	var req AddEntryRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
			return
		}
	}

	rec, err := h.store.AddEntry(r.Context(), id, req.Date, req.Meal)
	if err != nil {
		writeValidationError(w, err, "Failed to add cook entry")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// HandleCooked handles POST /v1/history/{recipeId}/cooked
func (h *Handler) HandleCooked(w http.ResponseWriter, r *http.Request) {
	id, ok := pathRecipeID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.MarkCooked(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to mark recipe cooked")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// HandleUpdateEntry handles PATCH /v1/history/{recipeId}/entries/{entryId}
func (h *Handler) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathRecipeID(w, r)
	if !ok {
		return
	}

	var patch EntryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}

	rec, found, err := h.store.UpdateEntry(r.Context(), id, r.PathValue("entryId"), patch)
	if err != nil {
		writeValidationError(w, err, "Failed to update cook entry")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", ErrEntryNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleDeleteEntry handles DELETE /v1/history/{recipeId}/entries/{entryId}
func (h *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathRecipeID(w, r)
	if !ok {
		return
	}

	rec, found, err := h.store.DeleteEntry(r.Context(), id, r.PathValue("entryId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete cook entry")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", ErrEntryNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func pathRecipeID(w http.ResponseWriter, r *http.Request) (recipeid.ID, bool) {
	id := recipeid.Parse(r.PathValue("recipeId"))
	if id.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "recipe id is required")
		return id, false
	}
	return id, true
}

func writeValidationError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, meals.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	case errors.Is(err, meals.ErrInvalidSlot):
		writeError(w, http.StatusBadRequest, "invalid_meal", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
