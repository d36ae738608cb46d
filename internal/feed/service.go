// Package feed combines the catalog with the bookmark, collection, history
// and meal plan stores into the views the client renders.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fdg312/cookbook/internal/catalog"
	"github.com/fdg312/cookbook/internal/history"
	"github.com/fdg312/cookbook/internal/mealplans"
	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/nutrition"
	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/rs/zerolog"
)

var ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")

// RecipeSource defines the catalog operations the engine reads
type RecipeSource interface {
	All() []catalog.Recipe
	FindByID(id recipeid.ID) (catalog.Recipe, bool)
}

// BookmarksReader defines the interface for bookmark lookups
type BookmarksReader interface {
	List(ctx context.Context) ([]recipeid.ID, error)
}

// CollectionsReader defines the interface for collection membership
type CollectionsReader interface {
	RecipesIn(ctx context.Context, collectionID string) ([]recipeid.ID, bool, error)
}

// HistoryReader defines the interface for cook history lookups
type HistoryReader interface {
	All(ctx context.Context) (map[string]history.Record, error)
	RecentlyCooked(ctx context.Context, limit int) ([]history.Recent, error)
}

// PlansReader defines the interface for meal plan lookups
type PlansReader interface {
	GetForDate(ctx context.Context, date string) (mealplans.DayPlan, error)
	Range(ctx context.Context, from, to string) (mealplans.Plan, error)
}

// Service is the filter/aggregation engine. Readers that are not wired are
// treated as empty stores.
type Service struct {
	recipes     RecipeSource
	bookmarks   BookmarksReader
	collections CollectionsReader
	history     HistoryReader
	plans       PlansReader
	goals       nutrition.Goals
	logger      zerolog.Logger
	now         func() time.Time
}

// NewService creates a new feed service
func NewService(recipes RecipeSource, logger zerolog.Logger) *Service {
	return &Service{
		recipes: recipes,
		goals:   nutrition.DefaultGoals(),
		logger:  logger,
		now:     time.Now,
	}
}

// WithBookmarks adds bookmark storage to the service
func (s *Service) WithBookmarks(r BookmarksReader) *Service {
	s.bookmarks = r
	return s
}

// WithCollections adds collection storage to the service
func (s *Service) WithCollections(r CollectionsReader) *Service {
	s.collections = r
	return s
}

// WithHistory adds cook history storage to the service
func (s *Service) WithHistory(r HistoryReader) *Service {
	s.history = r
	return s
}

// WithPlans adds meal plan storage to the service
func (s *Service) WithPlans(r PlansReader) *Service {
	s.plans = r
	return s
}

// WithGoals overrides the daily nutrition goals
func (s *Service) WithGoals(g nutrition.Goals) *Service {
	s.goals = g
	return s
}

// WithClock replaces the current-time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Today returns the current UTC date.
func (s *Service) Today() string {
	return meals.Today(s.now())
}

// FilterRecipes applies, in order: collection (which wins over category),
// bookmarks, recently-cooked, exact category, every ingredient term, then
// free text. Catalog order is kept except for recently-cooked, which is
// sorted by most recent cook date.
func (s *Service) FilterRecipes(ctx context.Context, f Filter) ([]catalog.Recipe, error) {
	result := s.recipes.All()
	category := strings.TrimSpace(f.Category)

	switch {
	case f.CollectionID != "":
		var ids []recipeid.ID
		if s.collections != nil {
			var err error
			if ids, _, err = s.collections.RecipesIn(ctx, f.CollectionID); err != nil {
				return nil, fmt.Errorf("failed to read collection: %w", err)
			}
		}
		result = keepIDs(result, ids)

	case category == CategoryBookmarks:
		var ids []recipeid.ID
		if s.bookmarks != nil {
			var err error
			if ids, err = s.bookmarks.List(ctx); err != nil {
				return nil, fmt.Errorf("failed to read bookmarks: %w", err)
			}
		}
		result = keepIDs(result, ids)

	case category == CategoryRecentlyCooked:
		var recent []history.Recent
		if s.history != nil {
			var err error
			if recent, err = s.history.RecentlyCooked(ctx, recentlyCookedLimit); err != nil {
				return nil, fmt.Errorf("failed to read cook history: %w", err)
			}
		}
		result = byRecentCook(result, recent)

	case category != "" && category != CategoryAll:
		result = keep(result, func(r catalog.Recipe) bool { return r.Category == category })
	}

	if terms := ingredientTerms(f.Ingredients); len(terms) > 0 {
		result = keep(result, func(r catalog.Recipe) bool { return hasAllIngredients(r, terms) })
	}

	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		result = keep(result, func(r catalog.Recipe) bool { return matchesText(r, q) })
	}

	if result == nil {
		result = []catalog.Recipe{}
	}
	return result, nil
}

func keep(recipes []catalog.Recipe, pred func(catalog.Recipe) bool) []catalog.Recipe {
	out := make([]catalog.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func keepIDs(recipes []catalog.Recipe, ids []recipeid.ID) []catalog.Recipe {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id.Key()] = struct{}{}
	}
	return keep(recipes, func(r catalog.Recipe) bool {
		_, ok := set[r.ID.Key()]
		return ok
	})
}

func byRecentCook(recipes []catalog.Recipe, recent []history.Recent) []catalog.Recipe {
	lastCooked := make(map[string]string, len(recent))
	for _, rc := range recent {
		if rc.LastCooked != nil {
			lastCooked[rc.RecipeID.Key()] = *rc.LastCooked
		}
	}

	out := keep(recipes, func(r catalog.Recipe) bool {
		_, ok := lastCooked[r.ID.Key()]
		return ok
	})
	sort.SliceStable(out, func(i, j int) bool {
		return lastCooked[out[i].ID.Key()] > lastCooked[out[j].ID.Key()]
	})
	return out
}

func ingredientTerms(raw []string) []string {
	var terms []string
	for _, t := range raw {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

func hasAllIngredients(r catalog.Recipe, terms []string) bool {
	for _, term := range terms {
		found := false
		for _, ing := range r.Ingredients {
			if strings.Contains(strings.ToLower(ing), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func matchesText(r catalog.Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Description), q) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing), q) {
			return true
		}
	}
	return false
}

// NutritionForDate totals cooked and planned recipes on date. Each
// (date, meal, recipe) triple counts once, so a recipe both cooked and
// planned in the same slot is not doubled.
func (s *Service) NutritionForDate(ctx context.Context, date string) (DayNutrition, error) {
	if _, err := meals.ParseDate(date); err != nil {
		return DayNutrition{}, err
	}

	cooked, err := s.cookedOn(ctx, date)
	if err != nil {
		return DayNutrition{}, err
	}
	planned, err := s.plannedOn(ctx, date)
	if err != nil {
		return DayNutrition{}, err
	}

	day := DayNutrition{Date: date, Contributors: []Contributor{}, Goals: s.goals}
	seen := map[string]struct{}{}
	index := map[string]int{}

	add := func(id recipeid.ID, meal meals.Slot) {
		slotKey := date + "-" + string(meal) + "-" + id.Key()
		if _, dup := seen[slotKey]; dup {
			return
		}
		recipe, ok := s.recipes.FindByID(id)
		if !ok || recipe.Nutrition == nil {
			return
		}
		seen[slotKey] = struct{}{}

		m := nutrition.FromRecipe(recipe)
		day.Totals = day.Totals.Add(m)

		i, ok := index[recipe.ID.Key()]
		if !ok {
			i = len(day.Contributors)
			index[recipe.ID.Key()] = i
			day.Contributors = append(day.Contributors, Contributor{RecipeID: recipe.ID, Title: recipe.Title, PerServing: m})
		}
		day.Contributors[i].Count++
	}

	for _, e := range cooked {
		add(e.RecipeID, e.Meal)
	}
	for _, slot := range meals.Planned() {
		for _, id := range planned[slot] {
			add(id, slot)
		}
	}

	day.Progress = nutrition.ProgressOf(day.Totals, s.goals)
	return day, nil
}

// WeekStart returns the Sunday on or before date.
func WeekStart(date time.Time) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// WeeklyNutrition sums NutritionForDate over the Sunday-start week holding
// anchor (today when empty) and merges contributors by recipe.
func (s *Service) WeeklyNutrition(ctx context.Context, anchor string) (WeekNutrition, error) {
	if anchor == "" {
		anchor = s.Today()
	}
	t, err := meals.ParseDate(anchor)
	if err != nil {
		return WeekNutrition{}, err
	}

	start := WeekStart(t)
	week := WeekNutrition{
		From:         start.Format(meals.DateLayout),
		To:           start.AddDate(0, 0, 6).Format(meals.DateLayout),
		Days:         make([]DayTotals, 0, 7),
		Contributors: []Contributor{},
		Goals:        s.goals.Weekly(),
	}
	index := map[string]int{}

	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i).Format(meals.DateLayout)
		day, err := s.NutritionForDate(ctx, date)
		if err != nil {
			return WeekNutrition{}, err
		}

		week.Days = append(week.Days, DayTotals{Date: date, Totals: day.Totals})
		week.Totals = week.Totals.Add(day.Totals)

		for _, c := range day.Contributors {
			if j, ok := index[c.RecipeID.Key()]; ok {
				week.Contributors[j].Count += c.Count
				continue
			}
			index[c.RecipeID.Key()] = len(week.Contributors)
			week.Contributors = append(week.Contributors, c)
		}
	}

	week.Progress = nutrition.ProgressOf(week.Totals, week.Goals)
	return week, nil
}

// MonthHeatmap lists every day of month (YYYY-MM, current month when
// empty) with the distinct slots cooked that day and whether anything is
// planned.
func (s *Service) MonthHeatmap(ctx context.Context, month string) (MonthHeatmap, error) {
	if month == "" {
		month = s.now().UTC().Format("2006-01")
	}
	first, err := time.Parse("2006-01", month)
	if err != nil {
		return MonthHeatmap{}, ErrInvalidMonth
	}
	last := first.AddDate(0, 1, -1)
	from, to := first.Format(meals.DateLayout), last.Format(meals.DateLayout)

	cookedSlots := map[string]map[meals.Slot]bool{}
	if s.history != nil {
		all, err := s.history.All(ctx)
		if err != nil {
			return MonthHeatmap{}, fmt.Errorf("failed to read cook history: %w", err)
		}
		for _, rec := range all {
			for _, e := range rec.Entries {
				if e.Date < from || e.Date > to {
					continue
				}
				if cookedSlots[e.Date] == nil {
					cookedSlots[e.Date] = map[meals.Slot]bool{}
				}
				cookedSlots[e.Date][e.Meal] = true
			}
		}
	}

	var plan mealplans.Plan
	if s.plans != nil {
		if plan, err = s.plans.Range(ctx, from, to); err != nil {
			return MonthHeatmap{}, fmt.Errorf("failed to read meal plans: %w", err)
		}
	}

	out := MonthHeatmap{Month: month, Days: make([]HeatmapDay, 0, last.Day())}
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format(meals.DateLayout)
		day := HeatmapDay{Date: date, Meals: []meals.Slot{}}
		for _, slot := range meals.All() {
			if cookedSlots[date][slot] {
				day.Meals = append(day.Meals, slot)
			}
		}
		if p, ok := plan[date]; ok && len(p.Recipes()) > 0 {
			day.Planned = true
		}
		out.Days = append(out.Days, day)
	}
	return out, nil
}

// Day returns planned recipes, cooked entries and nutrition for one date.
func (s *Service) Day(ctx context.Context, date string) (DayView, error) {
	nut, err := s.NutritionForDate(ctx, date)
	if err != nil {
		return DayView{}, err
	}
	planned, err := s.plannedOn(ctx, date)
	if err != nil {
		return DayView{}, err
	}
	cooked, err := s.cookedOn(ctx, date)
	if err != nil {
		return DayView{}, err
	}
	if cooked == nil {
		cooked = []CookedEntry{}
	}
	return DayView{Date: date, Planned: planned, Cooked: cooked, Nutrition: nut}, nil
}

// cookedOn lists history entries on date, recipes in key order.
func (s *Service) cookedOn(ctx context.Context, date string) ([]CookedEntry, error) {
	if s.history == nil {
		return nil, nil
	}
	all, err := s.history.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cook history: %w", err)
	}

	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []CookedEntry
	for _, key := range keys {
		for _, e := range all[key].Entries {
			if e.Date == date {
				out = append(out, CookedEntry{RecipeID: recipeid.Parse(key), EntryID: e.ID, Meal: e.Meal})
			}
		}
	}
	return out, nil
}

func (s *Service) plannedOn(ctx context.Context, date string) (mealplans.DayPlan, error) {
	if s.plans == nil {
		day := mealplans.DayPlan{}
		for _, slot := range meals.Planned() {
			day[slot] = []recipeid.ID{}
		}
		return day, nil
	}
	day, err := s.plans.GetForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read meal plans: %w", err)
	}
	return day, nil
}
