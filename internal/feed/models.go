package feed

import (
	"github.com/fdg312/cookbook/internal/catalog"
	"github.com/fdg312/cookbook/internal/mealplans"
	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/nutrition"
	"github.com/fdg312/cookbook/internal/recipeid"
)

// Pseudo-categories understood by FilterRecipes.
const (
	CategoryAll            = "all"
	CategoryBookmarks      = "bookmarks"
	CategoryRecentlyCooked = "recently-cooked"

	recentlyCookedLimit = 50
)

// Filter selects recipes for the grid. Empty fields do not filter.
type Filter struct {
	Search       string
	Category     string
	CollectionID string
	Ingredients  []string
}

// RecipesResponse is the response for GET /v1/recipes
type RecipesResponse struct {
	Recipes []catalog.Recipe `json:"recipes"`
	Total   int              `json:"total"`
}

// Contributor is one recipe's share of a nutrition total.
type Contributor struct {
	RecipeID   recipeid.ID      `json:"id"`
	Title      string           `json:"title"`
	Count      int              `json:"count"`
	PerServing nutrition.Macros `json:"perServing"`
}

// DayNutrition is the response for GET /v1/nutrition/day
type DayNutrition struct {
	Date         string             `json:"date"`
	Totals       nutrition.Macros   `json:"totals"`
	Contributors []Contributor      `json:"contributors"`
	Goals        nutrition.Goals    `json:"goals"`
	Progress     nutrition.Progress `json:"progress"`
}

// DayTotals is one row of the weekly breakdown.
type DayTotals struct {
	Date   string           `json:"date"`
	Totals nutrition.Macros `json:"totals"`
}

// WeekNutrition is the response for GET /v1/nutrition/week
type WeekNutrition struct {
	From         string             `json:"from"`
	To           string             `json:"to"`
	Days         []DayTotals        `json:"days"`
	Totals       nutrition.Macros   `json:"totals"`
	Contributors []Contributor      `json:"contributors"`
	Goals        nutrition.Goals    `json:"goals"`
	Progress     nutrition.Progress `json:"progress"`
}

// HeatmapDay marks which meal slots were cooked on a day and whether
// anything is planned for it.
type HeatmapDay struct {
	Date    string       `json:"date"`
	Meals   []meals.Slot `json:"meals"`
	Planned bool         `json:"planned"`
}

// MonthHeatmap is the response for GET /v1/calendar
type MonthHeatmap struct {
	Month string       `json:"month"`
	Days  []HeatmapDay `json:"days"`
}

// CookedEntry is a history entry seen from a single day.
type CookedEntry struct {
	RecipeID recipeid.ID `json:"recipeId"`
	EntryID  string      `json:"entryId"`
	Meal     meals.Slot  `json:"meal"`
}

// DayView is the response for GET /v1/calendar/day
type DayView struct {
	Date      string            `json:"date"`
	Planned   mealplans.DayPlan `json:"planned"`
	Cooked    []CookedEntry     `json:"cooked"`
	Nutrition DayNutrition      `json:"nutrition"`
}
