package feed

import (
	"context"
	"testing"
	"time"

	"github.com/fdg312/cookbook/internal/bookmarks"
	"github.com/fdg312/cookbook/internal/catalog"
	"github.com/fdg312/cookbook/internal/collections"
	"github.com/fdg312/cookbook/internal/history"
	"github.com/fdg312/cookbook/internal/mealplans"
	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/fdg312/cookbook/internal/storage/memory"
	"github.com/rs/zerolog"
)

type fakeRecipes struct {
	recipes []catalog.Recipe
}

func (f *fakeRecipes) All() []catalog.Recipe {
	return append([]catalog.Recipe(nil), f.recipes...)
}

func (f *fakeRecipes) FindByID(id recipeid.ID) (catalog.Recipe, bool) {
	for _, r := range f.recipes {
		if r.ID.Equal(id) {
			return r, true
		}
	}
	return catalog.Recipe{}, false
}

func sampleRecipes() []catalog.Recipe {
	return []catalog.Recipe{
		{
			ID: recipeid.FromInt(1), Title: "Garlic Chicken", Description: "Weeknight dinner", Category: "dinner",
			Ingredients: []string{"2 chicken breasts", "3 cloves Garlic", "olive oil"},
			Nutrition:   &catalog.Nutrition{Calories: "450kcal", Protein: "40g", Carbs: "10g", Fat: "20g"},
		},
		{
			ID: recipeid.FromInt(2), Title: "Oat Porridge", Description: "Warm and creamy", Category: "breakfast",
			Ingredients: []string{"oats", "milk", "honey"},
			Nutrition:   &catalog.Nutrition{Calories: "300kcal", Protein: "10g", Carbs: "50g", Fat: "5g"},
		},
		{
			ID: recipeid.FromInt(3), Title: "Tomato Soup", Description: "With garlic croutons", Category: "lunch",
			Ingredients: []string{"tomatoes", "garlic", "bread"},
			Nutrition:   &catalog.Nutrition{Calories: "250kcal", Protein: "6g", Carbs: "35g", Fat: "8g"},
		},
		{
			ID: recipeid.FromString("custom-1-a"), Title: "Chicken Salad", Category: "lunch", IsCustom: true,
			Ingredients: []string{"chicken", "lettuce"},
		},
	}
}

type fixture struct {
	svc         *Service
	bookmarks   *bookmarks.Store
	collections *collections.Store
	history     *history.Store
	plans       *mealplans.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	kv := memory.New()
	log := zerolog.Nop()
	now := func() time.Time { return time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC) } // среда

	f := fixture{
		bookmarks:   bookmarks.NewStore(kv, log),
		collections: collections.NewStore(kv, log),
		history:     history.NewStore(kv, log).WithClock(now),
		plans:       mealplans.NewStore(kv, log),
	}
	f.svc = NewService(&fakeRecipes{recipes: sampleRecipes()}, log).
		WithBookmarks(f.bookmarks).
		WithCollections(f.collections).
		WithHistory(f.history).
		WithPlans(f.plans).
		WithClock(now)
	return f
}

func titles(recipes []catalog.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Title
	}
	return out
}

func TestFilterRecipes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.bookmarks.Add(ctx, recipeid.FromString("2"))
	id, err := f.collections.Create(ctx, "Soups", "")
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	f.collections.AddRecipe(ctx, id, recipeid.FromInt(3))

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{Category: CategoryAll}, []string{"Garlic Chicken", "Oat Porridge", "Tomato Soup", "Chicken Salad"}},
		{"category", Filter{Category: "lunch"}, []string{"Tomato Soup", "Chicken Salad"}},
		{"bookmarks", Filter{Category: CategoryBookmarks}, []string{"Oat Porridge"}},
		{"collection wins over category", Filter{Category: "breakfast", CollectionID: id}, []string{"Tomato Soup"}},
		{"missing collection", Filter{CollectionID: "nope"}, []string{}},
		{"ingredients are conjunctive", Filter{Ingredients: []string{"GARLIC", "chicken"}}, []string{"Garlic Chicken"}},
		{"blank ingredient terms ignored", Filter{Ingredients: []string{" ", ""}}, []string{"Garlic Chicken", "Oat Porridge", "Tomato Soup", "Chicken Salad"}},
		{"search matches description", Filter{Search: "croutons"}, []string{"Tomato Soup"}},
		{"search matches ingredient", Filter{Search: "Lettuce"}, []string{"Chicken Salad"}},
		{"search after category", Filter{Category: "dinner", Search: "chicken"}, []string{"Garlic Chicken"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.FilterRecipes(ctx, tt.filter)
			if err != nil {
				t.Fatalf("FilterRecipes: %v", err)
			}
			names := titles(got)
			if len(names) != len(tt.want) {
				t.Fatalf("got %v, want %v", names, tt.want)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", names, tt.want)
				}
			}
		})
	}
}

func TestRecentlyCookedIsSortedByCookDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.history.AddEntry(ctx, recipeid.FromInt(1), "2024-03-01", meals.Dinner)
	f.history.AddEntry(ctx, recipeid.FromInt(3), "2024-03-05", meals.Lunch)

	got, err := f.svc.FilterRecipes(ctx, Filter{Category: CategoryRecentlyCooked})
	if err != nil {
		t.Fatalf("FilterRecipes: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Tomato Soup" || got[1].Title != "Garlic Chicken" {
		t.Errorf("expected 03-05 recipe first, got %v", titles(got))
	}
}

func TestNutritionForDateDedupsHistoryAndPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.history.AddEntry(ctx, recipeid.FromInt(1), "2024-03-06", meals.Dinner)
	f.plans.AddRecipe(ctx, "2024-03-06", meals.Dinner, recipeid.FromString("1"))
	f.plans.AddRecipe(ctx, "2024-03-06", meals.Dinner, recipeid.FromInt(1))
	f.plans.AddRecipe(ctx, "2024-03-06", meals.Lunch, recipeid.FromInt(1))
	f.plans.AddRecipe(ctx, "2024-03-06", meals.Breakfast, recipeid.FromInt(2))
	f.plans.AddRecipe(ctx, "2024-03-06", meals.Snack, recipeid.FromString("custom-1-a"))

	day, err := f.svc.NutritionForDate(ctx, "2024-03-06")
	if err != nil {
		t.Fatalf("NutritionForDate: %v", err)
	}
	// ужин и обед по 450, завтрак 300, салат без данных о питании
	if day.Totals.Calories != 1200 {
		t.Errorf("expected 1200 kcal, got %d", day.Totals.Calories)
	}
	if day.Totals.Protein != 90 || day.Totals.Fat != 45 {
		t.Errorf("unexpected totals %+v", day.Totals)
	}
	if len(day.Contributors) != 2 {
		t.Fatalf("expected 2 contributors, got %+v", day.Contributors)
	}
	if c := day.Contributors[0]; c.Title != "Garlic Chicken" || c.Count != 2 || c.PerServing.Calories != 450 {
		t.Errorf("unexpected first contributor %+v", c)
	}
	if day.Progress.Calories != 60 {
		t.Errorf("expected 60%% of the calorie goal, got %d", day.Progress.Calories)
	}

	if _, err := f.svc.NutritionForDate(ctx, "yesterday"); err != meals.ErrInvalidDate {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestWeeklyNutritionStartsOnSunday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.history.AddEntry(ctx, recipeid.FromInt(2), "2024-03-03", meals.Breakfast) // воскресенье
	f.history.AddEntry(ctx, recipeid.FromInt(2), "2024-03-09", meals.Breakfast) // суббота
	f.history.AddEntry(ctx, recipeid.FromInt(2), "2024-03-10", meals.Breakfast) // следующая неделя
	f.plans.AddRecipe(ctx, "2024-03-07", meals.Lunch, recipeid.FromInt(3))

	week, err := f.svc.WeeklyNutrition(ctx, "")
	if err != nil {
		t.Fatalf("WeeklyNutrition: %v", err)
	}
	if week.From != "2024-03-03" || week.To != "2024-03-09" || len(week.Days) != 7 {
		t.Fatalf("unexpected week bounds %s..%s (%d days)", week.From, week.To, len(week.Days))
	}
	if week.Totals.Calories != 850 {
		t.Errorf("expected 850 kcal, got %d", week.Totals.Calories)
	}
	if len(week.Contributors) != 2 || week.Contributors[0].Count != 2 {
		t.Errorf("contributors must merge by recipe: %+v", week.Contributors)
	}
	if week.Goals.Calories != 14000 {
		t.Errorf("expected weekly goals, got %+v", week.Goals)
	}
}

func TestMonthHeatmap(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.history.AddEntry(ctx, recipeid.FromInt(1), "2024-02-10", meals.Dinner)
	f.history.AddEntry(ctx, recipeid.FromInt(2), "2024-02-10", meals.Breakfast)
	f.history.AddEntry(ctx, recipeid.FromInt(3), "2024-02-10", meals.Dinner)
	f.history.AddEntry(ctx, recipeid.FromInt(3), "2024-03-01", meals.Lunch)
	f.plans.AddRecipe(ctx, "2024-02-20", meals.Snack, recipeid.FromInt(2))

	hm, err := f.svc.MonthHeatmap(ctx, "2024-02")
	if err != nil {
		t.Fatalf("MonthHeatmap: %v", err)
	}
	if len(hm.Days) != 29 {
		t.Fatalf("expected 29 days in Feb 2024, got %d", len(hm.Days))
	}

	d10 := hm.Days[9]
	if d10.Date != "2024-02-10" || len(d10.Meals) != 2 || d10.Meals[0] != meals.Breakfast || d10.Meals[1] != meals.Dinner {
		t.Errorf("expected distinct slots breakfast+dinner, got %+v", d10)
	}
	if !hm.Days[19].Planned || hm.Days[9].Planned {
		t.Error("planned flag mismatch")
	}

	if _, err := f.svc.MonthHeatmap(ctx, "2024-13"); err != ErrInvalidMonth {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestDayView(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.history.AddEntry(ctx, recipeid.FromInt(2), "2024-03-06", meals.Breakfast)
	f.plans.AddRecipe(ctx, "2024-03-06", meals.Dinner, recipeid.FromInt(1))

	day, err := f.svc.Day(ctx, "2024-03-06")
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(day.Cooked) != 1 || day.Cooked[0].Meal != meals.Breakfast {
		t.Errorf("unexpected cooked entries %+v", day.Cooked)
	}
	if len(day.Planned[meals.Dinner]) != 1 || len(day.Planned) != 4 {
		t.Errorf("unexpected planned %+v", day.Planned)
	}
	if day.Nutrition.Totals.Calories != 750 {
		t.Errorf("expected 750 kcal, got %d", day.Nutrition.Totals.Calories)
	}
}

func TestUnwiredReadersAreEmpty(t *testing.T) {
	svc := NewService(&fakeRecipes{recipes: sampleRecipes()}, zerolog.Nop())

	got, err := svc.FilterRecipes(context.Background(), Filter{Category: CategoryBookmarks})
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty result, got %v err=%v", titles(got), err)
	}
	if _, err := svc.NutritionForDate(context.Background(), "2024-01-01"); err != nil {
		t.Errorf("NutritionForDate: %v", err)
	}
}
