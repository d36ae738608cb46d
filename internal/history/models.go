package history

import (
	"errors"
	"sort"

	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/recipeid"
)

var (
	ErrRecipeNotFound = errors.New("no cook history for recipe")
	ErrEntryNotFound  = errors.New("cook entry not found")
)

// Entry is one recorded cook event.
type Entry struct {
	ID   string     `json:"id"`
	Date string     `json:"date"`
	Meal meals.Slot `json:"meal"`
}

// Record is the per-recipe history. Count always equals len(Entries) and
// LastCooked is the date of Entries[0] (nil when empty).
type Record struct {
	Count      int     `json:"count"`
	LastCooked *string `json:"lastCooked"`
	Entries    []Entry `json:"entries"`

	// Dates is the legacy schema. It is converted when the record has no
	// entries and otherwise left as stored.
	Dates []string `json:"dates,omitempty"`
}

// Recent pairs a record with its recipe id.
type Recent struct {
	RecipeID recipeid.ID `json:"recipeId"`
	Record
}

// EntryPatch updates an entry; nil fields are left unchanged.
type EntryPatch struct {
	Date *string     `json:"date,omitempty"`
	Meal *meals.Slot `json:"meal,omitempty"`
}

// AddEntryRequest is the body of POST /v1/history/{recipeId}/entries.
type AddEntryRequest struct {
	Date string     `json:"date,omitempty"`
	Meal meals.Slot `json:"meal,omitempty"`
}

// normalize re-sorts entries by date descending (stable) and recomputes
// Count and LastCooked. It reports whether the record changed.
func (r *Record) normalize() bool {
	changed := false
	if r.Entries == nil {
		r.Entries = []Entry{}
		changed = true
	}
	newestFirst := func(i, j int) bool { return r.Entries[i].Date > r.Entries[j].Date }
	if !sort.SliceIsSorted(r.Entries, newestFirst) {
		sort.SliceStable(r.Entries, newestFirst)
		changed = true
	}

	if r.Count != len(r.Entries) {
		r.Count = len(r.Entries)
		changed = true
	}
	if len(r.Entries) == 0 {
		if r.LastCooked != nil {
			r.LastCooked = nil
			changed = true
		}
		return changed
	}
	last := r.Entries[0].Date
	if r.LastCooked == nil || *r.LastCooked != last {
		r.LastCooked = &last
		changed = true
	}
	return changed
}

func (r Record) clone() Record {
	out := r
	out.Entries = append([]Entry(nil), r.Entries...)
	if out.Entries == nil {
		out.Entries = []Entry{}
	}
	if r.LastCooked != nil {
		last := *r.LastCooked
		out.LastCooked = &last
	}
	out.Dates = nil
	return out
}
