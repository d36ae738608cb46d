package mealplans

import (
	"github.com/fdg312/cookbook/internal/history"
	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/recipeid"
)

// DayPlan maps each planned slot to its recipes in insertion order.
type DayPlan map[meals.Slot][]recipeid.ID

// Plan is the persisted shape of cookbook-meal-plans: date -> slot -> ids.
type Plan map[string]DayPlan

// Target tells where a planner selection was recorded.
type Target string

const (
	TargetPlan    Target = "plan"
	TargetHistory Target = "history"
)

// AddRecipeRequest is the body of POST /v1/meal-plan/{date}/{slot}.
type AddRecipeRequest struct {
	RecipeID recipeid.ID `json:"recipeId"`
}

// SelectRequest is the body of POST /v1/planner/select.
type SelectRequest struct {
	Date     string      `json:"date"`
	Meal     meals.Slot  `json:"meal"`
	RecipeID recipeid.ID `json:"recipeId"`
}

// SelectResult describes the outcome of a planner selection. Exactly one of
// Day and Record is set, matching Target.
type SelectResult struct {
	Target   Target          `json:"target"`
	Date     string          `json:"date"`
	Meal     meals.Slot      `json:"meal"`
	RecipeID recipeid.ID     `json:"recipeId"`
	Day      DayPlan         `json:"day,omitempty"`
	Record   *history.Record `json:"record,omitempty"`
}

// emptyDay returns a day with every planned slot present and empty.
func emptyDay() DayPlan {
	day := make(DayPlan, len(meals.Planned()))
	for _, slot := range meals.Planned() {
		day[slot] = []recipeid.ID{}
	}
	return day
}

// filled copies d over an empty day so callers always see all four slots.
func (d DayPlan) filled() DayPlan {
	out := emptyDay()
	for slot, ids := range d {
		if !slot.IsPlanned() {
			continue
		}
		out[slot] = append([]recipeid.ID{}, ids...)
	}
	return out
}

func (d DayPlan) isEmpty() bool {
	for _, ids := range d {
		if len(ids) > 0 {
			return false
		}
	}
	return true
}

// Recipes returns every planned id of the day in slot order.
func (d DayPlan) Recipes() []recipeid.ID {
	var out []recipeid.ID
	for _, slot := range meals.Planned() {
		out = append(out, d[slot]...)
	}
	return out
}
