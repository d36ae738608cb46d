package collections

import (
	"errors"
	"strings"
	"unicode"

	"github.com/fdg312/cookbook/internal/recipeid"
)

var (
	ErrNotFound            = errors.New("collection not found")
	ErrDuplicateCollection = errors.New("collection already exists")
	ErrInvalidName         = errors.New("collection name must contain letters or digits")
)

// DefaultIcon is used when create is called without an icon.
const DefaultIcon = "📁"

// Collection is a named group of recipe ids.
type Collection struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Icon    string        `json:"icon"`
	Recipes []recipeid.ID `json:"recipes"`
}

// record is the persisted value; the collection id is its key.
type record struct {
	Name    string        `json:"name"`
	Icon    string        `json:"icon"`
	Recipes []recipeid.ID `json:"recipes"`
}

func (r record) toCollection(id string) Collection {
	recipes := r.Recipes
	if recipes == nil {
		recipes = []recipeid.ID{}
	}
	return Collection{ID: id, Name: r.Name, Icon: r.Icon, Recipes: recipes}
}

func defaults() map[string]record {
	return map[string]record{
		"quick-meals":  {Name: "Quick Meals", Icon: "⚡", Recipes: []recipeid.ID{}},
		"party-food":   {Name: "Party Food", Icon: "🎉", Recipes: []recipeid.ID{}},
		"healthy":      {Name: "Healthy", Icon: "🥗", Recipes: []recipeid.ID{}},
		"weeknight":    {Name: "Weeknight Dinners", Icon: "🌙", Recipes: []recipeid.ID{}},
		"comfort-food": {Name: "Comfort Food", Icon: "🍲", Recipes: []recipeid.ID{}},
	}
}

// Slug derives a collection id from its name: lower-case, whitespace runs
// become "-", anything outside [a-z0-9-] is dropped.
func Slug(name string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CreateRequest is the body of POST /v1/collections.
type CreateRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// RenameRequest is the body of PATCH /v1/collections/{id}.
type RenameRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}
