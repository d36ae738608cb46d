package mealplans

import (
	"context"
	"fmt"
	"time"

	"github.com/fdg312/cookbook/internal/history"
	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/rs/zerolog"
)

// HistoryRecorder is the part of the cook history a past selection lands in.
type HistoryRecorder interface {
	AddEntry(ctx context.Context, recipeID recipeid.ID, date string, meal meals.Slot) (history.Record, error)
}

// Service owns the planner's temporal rule: past dates become cook entries,
// today and later become plan entries.
type Service struct {
	plans   *Store
	history HistoryRecorder
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a planner service.
func NewService(plans *Store, history HistoryRecorder, logger zerolog.Logger) *Service {
	return &Service{plans: plans, history: history, logger: logger, now: time.Now}
}

// WithClock replaces the current-time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Plans exposes the underlying store.
func (s *Service) Plans() *Store {
	return s.plans
}

// Select records recipeID for date and meal.
func (s *Service) Select(ctx context.Context, date string, meal meals.Slot, recipeID recipeid.ID) (SelectResult, error) {
	if err := validate(date, meal); err != nil {
		return SelectResult{}, err
	}
	if recipeID.IsZero() {
		return SelectResult{}, fmt.Errorf("recipe id is required")
	}

	result := SelectResult{Date: date, Meal: meal, RecipeID: recipeID}
	today := meals.Today(s.now())

	if date < today {
		rec, err := s.history.AddEntry(ctx, recipeID, date, meal)
		if err != nil {
			return SelectResult{}, fmt.Errorf("failed to record cook entry: %w", err)
		}
		s.logger.Debug().Str("date", date).Str("meal", string(meal)).Msg("past selection recorded as cooked")
		result.Target = TargetHistory
		result.Record = &rec
		return result, nil
	}

	day, err := s.plans.AddRecipe(ctx, date, meal, recipeID)
	if err != nil {
		return SelectResult{}, fmt.Errorf("failed to plan recipe: %w", err)
	}
	result.Target = TargetPlan
	result.Day = day
	return result, nil
}
