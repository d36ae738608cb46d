package mealplans

import (
	"context"
	"testing"

	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/fdg312/cookbook/internal/storage/memory"
	"github.com/rs/zerolog"
)

func TestGetForDateReturnsAllSlots(t *testing.T) {
	s := NewStore(memory.New(), zerolog.Nop())

	day, err := s.GetForDate(context.Background(), "2024-05-01")
	if err != nil {
		t.Fatalf("GetForDate: %v", err)
	}
	for _, slot := range meals.Planned() {
		ids, ok := day[slot]
		if !ok || ids == nil || len(ids) != 0 {
			t.Errorf("slot %s: expected empty sequence, got %v (present=%v)", slot, ids, ok)
		}
	}
	if _, ok := day[meals.Unknown]; ok {
		t.Error("unknown is not a plannable slot")
	}
}

func TestAddRecipeKeepsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New(), zerolog.Nop())

	s.AddRecipe(ctx, "2024-05-01", meals.Lunch, recipeid.FromInt(3))
	day, err := s.AddRecipe(ctx, "2024-05-01", meals.Lunch, recipeid.FromInt(3))
	if err != nil {
		t.Fatalf("AddRecipe: %v", err)
	}
	if len(day[meals.Lunch]) != 2 {
		t.Errorf("expected duplicate to be kept, got %v", day[meals.Lunch])
	}

	if _, err := s.AddRecipe(ctx, "2024-05-01", meals.Unknown, recipeid.FromInt(3)); err != meals.ErrInvalidSlot {
		t.Errorf("expected ErrInvalidSlot, got %v", err)
	}
	if _, err := s.AddRecipe(ctx, "May 1", meals.Lunch, recipeid.FromInt(3)); err != meals.ErrInvalidDate {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestRemoveRecipeNormalizesAndPrunes(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New(), zerolog.Nop())

	s.AddRecipe(ctx, "2024-05-01", meals.Dinner, recipeid.FromInt(3))
	s.AddRecipe(ctx, "2024-05-01", meals.Dinner, recipeid.FromString("3"))

	day, removed, err := s.RemoveRecipe(ctx, "2024-05-01", meals.Dinner, recipeid.FromString("3"))
	if err != nil || !removed {
		t.Fatalf("RemoveRecipe: removed=%v err=%v", removed, err)
	}
	if len(day[meals.Dinner]) != 0 {
		t.Errorf("expected all normalized matches removed, got %v", day[meals.Dinner])
	}

	dates, _ := s.Dates(ctx)
	if len(dates) != 0 {
		t.Errorf("empty date must be pruned, got %v", dates)
	}

	if _, removed, _ := s.RemoveRecipe(ctx, "2024-05-01", meals.Dinner, recipeid.FromInt(3)); removed {
		t.Error("expected nothing to remove")
	}
}

func TestRemoveRecipeEverywhere(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New(), zerolog.Nop())
	target := recipeid.FromString("custom-1-a")

	s.AddRecipe(ctx, "2024-05-01", meals.Breakfast, target)
	s.AddRecipe(ctx, "2024-05-02", meals.Snack, target)
	s.AddRecipe(ctx, "2024-05-02", meals.Lunch, recipeid.FromInt(1))

	changed, err := s.RemoveRecipeEverywhere(ctx, target)
	if err != nil || !changed {
		t.Fatalf("RemoveRecipeEverywhere: changed=%v err=%v", changed, err)
	}

	all, _ := s.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected only 2024-05-02 to remain, got %v", all)
	}
	if ids := all["2024-05-02"].Recipes(); len(ids) != 1 || !ids[0].Equal(recipeid.FromInt(1)) {
		t.Errorf("unexpected remaining recipes %v", ids)
	}

	if changed, _ := s.RemoveRecipeEverywhere(ctx, target); changed {
		t.Error("second pass must report no change")
	}
}

func TestRange(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New(), zerolog.Nop())

	for _, d := range []string{"2024-04-30", "2024-05-01", "2024-05-31", "2024-06-01"} {
		s.AddRecipe(ctx, d, meals.Lunch, recipeid.FromInt(1))
	}
	plan, err := s.Range(ctx, "2024-05-01", "2024-05-31")
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(plan) != 2 {
		t.Errorf("expected 2 dates in May, got %v", plan)
	}
}
