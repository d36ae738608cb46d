package feed

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fdg312/cookbook/internal/meals"
)

// Handler handles HTTP requests for the derived views.
type Handler struct {
	service *Service
}

// NewHandler creates a new feed handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleRecipes handles GET /v1/recipes?q=&category=&collection=&ingredient=
func (h *Handler) HandleRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var ingredients []string
	for _, v := range q["ingredient"] {
		ingredients = append(ingredients, strings.Split(v, ",")...)
	}

	recipes, err := h.service.FilterRecipes(r.Context(), Filter{
		Search:       q.Get("q"),
		Category:     q.Get("category"),
		CollectionID: q.Get("collection"),
		Ingredients:  ingredients,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to filter recipes")
		return
	}
	writeJSON(w, http.StatusOK, RecipesResponse{Recipes: recipes, Total: len(recipes)})
}

// HandleNutritionDay handles GET /v1/nutrition/day?date=
func (h *Handler) HandleNutritionDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.service.Today()
	}

	day, err := h.service.NutritionForDate(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

// HandleNutritionWeek handles GET /v1/nutrition/week?date=
func (h *Handler) HandleNutritionWeek(w http.ResponseWriter, r *http.Request) {
	week, err := h.service.WeeklyNutrition(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

// HandleCalendar handles GET /v1/calendar?month=YYYY-MM
func (h *Handler) HandleCalendar(w http.ResponseWriter, r *http.Request) {
	heatmap, err := h.service.MonthHeatmap(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, heatmap)
}

// HandleCalendarDay handles GET /v1/calendar/day?date=
func (h *Handler) HandleCalendarDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.service.Today()
	}

	day, err := h.service.Day(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, day)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, meals.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	case errors.Is(err, ErrInvalidMonth):
		writeError(w, http.StatusBadRequest, "invalid_month", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
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
