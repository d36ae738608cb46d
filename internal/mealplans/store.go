// Package mealplans stores recipes scheduled per date and meal slot and
// routes planner selections between the plan and the cook history.
package mealplans

import (
	"context"
	"sort"
	"sync"

	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/fdg312/cookbook/internal/storage"
	"github.com/rs/zerolog"
)

// Store owns the cookbook-meal-plans key.
type Store struct {
	mu   sync.Mutex
	blob *storage.Blob[Plan]
}

// NewStore creates a meal plan store on kv.
func NewStore(kv storage.KV, logger zerolog.Logger) *Store {
	return &Store{blob: storage.NewBlob[Plan](kv, storage.KeyMealPlans, logger)}
}

// load must be called with s.mu held.
func (s *Store) load(ctx context.Context) (Plan, error) {
	plan, _, err := s.blob.Load(ctx)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		plan = Plan{}
	}
	return plan, nil
}

func validate(date string, slot meals.Slot) error {
	if _, err := meals.ParseDate(date); err != nil {
		return err
	}
	if !slot.IsPlanned() {
		return meals.ErrInvalidSlot
	}
	return nil
}

// All returns every planned date.
func (s *Store) All(ctx context.Context) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(Plan, len(plan))
	for date, day := range plan {
		out[date] = day.filled()
	}
	return out, nil
}

// Range returns the planned dates between from and to inclusive.
func (s *Store) Range(ctx context.Context, from, to string) (Plan, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	for date := range all {
		if date < from || date > to {
			delete(all, date)
		}
	}
	return all, nil
}

// Dates returns the planned dates in ascending order.
func (s *Store) Dates(ctx context.Context) ([]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(all))
	for date := range all {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// GetForDate returns all four slots for date; unplanned slots are empty.
func (s *Store) GetForDate(ctx context.Context, date string) (DayPlan, error) {
	if _, err := meals.ParseDate(date); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return plan[date].filled(), nil
}

// AddRecipe appends id to the slot. Duplicates are kept.
func (s *Store) AddRecipe(ctx context.Context, date string, slot meals.Slot, id recipeid.ID) (DayPlan, error) {
	if err := validate(date, slot); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	day := plan[date].filled()
	day[slot] = append(day[slot], id)
	plan[date] = day

	if err := s.blob.Save(ctx, plan); err != nil {
		return nil, err
	}
	return day.filled(), nil
}

// RemoveRecipe drops every normalized match of id from the slot. A date
// left with no recipes is removed from the plan.
func (s *Store) RemoveRecipe(ctx context.Context, date string, slot meals.Slot, id recipeid.ID) (DayPlan, bool, error) {
	if err := validate(date, slot); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.load(ctx)
	if err != nil {
		return nil, false, err
	}
	day, ok := plan[date]
	if !ok {
		return emptyDay(), false, nil
	}

	day = day.filled()
	kept, removed := recipeid.Without(day[slot], id)
	if !removed {
		return day, false, nil
	}
	day[slot] = kept
	if day.isEmpty() {
		delete(plan, date)
	} else {
		plan[date] = day
	}

	if err := s.blob.Save(ctx, plan); err != nil {
		return nil, false, err
	}
	return day.filled(), true, nil
}

// RemoveRecipeEverywhere drops id from every date and slot and persists
// once if anything changed.
func (s *Store) RemoveRecipeEverywhere(ctx context.Context, id recipeid.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	changed := false
	for date, day := range plan {
		for slot, ids := range day {
			if kept, removed := recipeid.Without(ids, id); removed {
				day[slot] = kept
				changed = true
			}
		}
		if day.isEmpty() {
			delete(plan, date)
		}
	}
	if !changed {
		return false, nil
	}
	return true, s.blob.Save(ctx, plan)
}
