package nutrition

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fdg312/cookbook/internal/catalog"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"350kcal", 350},
		{"12g", 12},
		{" 1,200 kcal ", 1200},
		{"", 0},
		{"n/a", 0},
		{"99999999999999999999999", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Parse(tt.in); got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromRecipe(t *testing.T) {
	if m := FromRecipe(catalog.Recipe{}); m != (Macros{}) {
		t.Errorf("missing nutrition must be zero, got %+v", m)
	}

	r := catalog.Recipe{Nutrition: &catalog.Nutrition{Calories: "420kcal", Protein: "30g", Carbs: "15g", Fat: "9g"}}
	want := Macros{Calories: 420, Protein: 30, Carbs: 15, Fat: 9}
	if got := FromRecipe(r); got != want {
		t.Errorf("FromRecipe = %+v, want %+v", got, want)
	}
	if got := want.Add(want); got.Calories != 840 || got.Fat != 18 {
		t.Errorf("Add = %+v", got)
	}
}

func TestProgressCapsAt100(t *testing.T) {
	goals := DefaultGoals()
	p := ProgressOf(Macros{Calories: 1000, Protein: 80, Carbs: 0}, goals)
	if p.Calories != 50 || p.Protein != 100 || p.Carbs != 0 {
		t.Errorf("unexpected progress %+v", p)
	}

	if w := goals.Weekly(); w.Calories != 14000 || w.Protein != 350 || w.Carbs != 1925 {
		t.Errorf("unexpected weekly goals %+v", w)
	}
	if err := goals.Validate(); err != nil {
		t.Errorf("default goals must be valid: %v", err)
	}
	if err := (Goals{Calories: 100, Protein: 1, Carbs: 1}).Validate(); err == nil {
		t.Error("expected validation error")
	}
}

func TestHandleGoals(t *testing.T) {
	w := httptest.NewRecorder()
	NewHandler(DefaultGoals()).HandleGoals(w, httptest.NewRequest(http.MethodGet, "/v1/nutrition/goals", nil))

	var resp map[string]Goals
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["daily"].Calories != 2000 || resp["weekly"].Calories != 14000 {
		t.Errorf("unexpected response %+v", resp)
	}
}
