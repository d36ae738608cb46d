package nutrition

import (
	"encoding/json"
	"net/http"
)

// Handler serves the configured goals.
type Handler struct {
	goals Goals
}

// NewHandler creates a new nutrition goals handler.
func NewHandler(goals Goals) *Handler {
	return &Handler{goals: goals}
}

// HandleGoals handles GET /v1/nutrition/goals
func (h *Handler) HandleGoals(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]Goals{
		"daily":  h.goals,
		"weekly": h.goals.Weekly(),
	})
}
