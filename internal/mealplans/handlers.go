package mealplans

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/recipeid"
)

// Handler handles HTTP requests for meal plans and the planner.
type Handler struct {
	service *Service
}

// NewHandler creates a new meal plans handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet handles GET /v1/meal-plan?date= (or ?from=&to=, or everything)
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if date := q.Get("date"); date != "" {
		day, err := h.service.Plans().GetForDate(r.Context(), date)
		if err != nil {
			writeValidationError(w, err, "Failed to get meal plan")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"date": date, "meals": day})
		return
	}

	from, to := q.Get("from"), q.Get("to")
	if from != "" || to != "" {
		if _, err := meals.ParseDate(from); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD")
			return
		}
		if _, err := meals.ParseDate(to); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD")
			return
		}
		plan, err := h.service.Plans().Range(r.Context(), from, to)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get meal plan")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"plans": plan})
		return
	}

	plan, err := h.service.Plans().All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get meal plan")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": plan})
}

// HandleAdd handles POST /v1/meal-plan/{date}/{slot}
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}
	if req.RecipeID.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "recipeId is required")
		return
	}

	date := r.PathValue("date")
	day, err := h.service.Plans().AddRecipe(r.Context(), date, meals.Slot(r.PathValue("slot")), req.RecipeID)
	if err != nil {
		writeValidationError(w, err, "Failed to plan recipe")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"date": date, "meals": day})
}

// HandleRemove handles DELETE /v1/meal-plan/{date}/{slot}/{recipeId}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	id := recipeid.Parse(r.PathValue("recipeId"))

	day, removed, err := h.service.Plans().RemoveRecipe(r.Context(), date, meals.Slot(r.PathValue("slot")), id)
	if err != nil {
		writeValidationError(w, err, "Failed to remove planned recipe")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "not_found", "Recipe is not planned for this slot")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "meals": day})
}

// HandleSelect handles POST /v1/planner/select
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON")
		return
	}
	if req.RecipeID.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_request", "recipeId is required")
		return
	}

	result, err := h.service.Select(r.Context(), req.Date, req.Meal, req.RecipeID)
	if err != nil {
		writeValidationError(w, err, "Failed to record selection")
		return
	}
	writeJSON(w, http.StatusCreated, result)
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
