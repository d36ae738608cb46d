// Package customrecipes stores user-authored recipes and runs the cleanup
// that follows deleting one.
package customrecipes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fdg312/cookbook/internal/catalog"
	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/fdg312/cookbook/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository owns the cookbook-custom-recipes key: an array of recipes.
type Repository struct {
	mu    sync.Mutex
	blob  *storage.Blob[[]catalog.Recipe]
	now   func() time.Time
	token func() string
}

// NewRepository creates a custom recipe repository on kv.
func NewRepository(kv storage.KV, logger zerolog.Logger) *Repository {
	return &Repository{
		blob: storage.NewBlob[[]catalog.Recipe](kv, storage.KeyCustomRecipes, logger),
		now:  time.Now,
		token: func() string {
			return strings.SplitN(uuid.NewString(), "-", 2)[0]
		},
	}
}

// WithClock replaces the time source used for generated ids.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = now
	return r
}

// WithTokens replaces the random suffix generator used for generated ids.
func (r *Repository) WithTokens(token func() string) *Repository {
	r.token = token
	return r
}

// NewID returns custom-<unix millis>-<random>.
func (r *Repository) NewID() recipeid.ID {
	return recipeid.FromString(fmt.Sprintf("custom-%d-%s", r.now().UnixMilli(), r.token()))
}

// load must be called with r.mu held.
func (r *Repository) load(ctx context.Context) ([]catalog.Recipe, error) {
	recipes, _, err := r.blob.Load(ctx)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// List returns every custom recipe in stored order.
func (r *Repository) List(ctx context.Context) ([]catalog.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recipes, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []catalog.Recipe{}
	}
	for i := range recipes {
		recipes[i].IsCustom = true
	}
	return recipes, nil
}

// Get finds one recipe by normalized id.
func (r *Repository) Get(ctx context.Context, id recipeid.ID) (catalog.Recipe, bool, error) {
	recipes, err := r.List(ctx)
	if err != nil {
		return catalog.Recipe{}, false, err
	}
	if i := indexOf(recipes, id); i >= 0 {
		return recipes[i], true, nil
	}
	return catalog.Recipe{}, false, nil
}

// Save creates a recipe, generating an id when none is given, or replaces
// the stored recipe with the same id.
func (r *Repository) Save(ctx context.Context, recipe catalog.Recipe) (catalog.Recipe, error) {
	if strings.TrimSpace(recipe.Title) == "" {
		return catalog.Recipe{}, ErrTitleRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	recipes, err := r.load(ctx)
	if err != nil {
		return catalog.Recipe{}, err
	}
	recipes = r.upsert(recipes, recipe)
	if err := r.blob.Save(ctx, recipes); err != nil {
		return catalog.Recipe{}, err
	}
	return recipes[r.lastTouched(recipes, recipe)], nil
}

// Update replaces an existing recipe. ErrNotFound when id is unknown.
func (r *Repository) Update(ctx context.Context, id recipeid.ID, recipe catalog.Recipe) (catalog.Recipe, error) {
	if strings.TrimSpace(recipe.Title) == "" {
		return catalog.Recipe{}, ErrTitleRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	recipes, err := r.load(ctx)
	if err != nil {
		return catalog.Recipe{}, err
	}
	i := indexOf(recipes, id)
	if i < 0 {
		return catalog.Recipe{}, ErrNotFound
	}

	recipe.ID = recipes[i].ID
	applyDefaults(&recipe)
	recipes[i] = recipe
	if err := r.blob.Save(ctx, recipes); err != nil {
		return catalog.Recipe{}, err
	}
	return recipe, nil
}

// Delete removes a recipe and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id recipeid.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recipes, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(recipes, id)
	if i < 0 {
		return false, nil
	}
	recipes = append(recipes[:i], recipes[i+1:]...)
	return true, r.blob.Save(ctx, recipes)
}

// Import saves every recipe in one write. Recipes keep their ids when they
// have one; untitled entries are skipped.
func (r *Repository) Import(ctx context.Context, incoming []catalog.Recipe) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recipes, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, recipe := range incoming {
		if strings.TrimSpace(recipe.Title) == "" {
			continue
		}
		recipes = r.upsert(recipes, recipe)
		imported++
	}
	if imported == 0 {
		return 0, ErrNothingToImport
	}
	return imported, r.blob.Save(ctx, recipes)
}

// Export returns the recipes as a catalog document.
func (r *Repository) Export(ctx context.Context) (catalog.Document, error) {
	recipes, err := r.List(ctx)
	if err != nil {
		return catalog.Document{}, err
	}
	return catalog.Document{Recipes: recipes}, nil
}

func (r *Repository) upsert(recipes []catalog.Recipe, recipe catalog.Recipe) []catalog.Recipe {
	if recipe.ID.IsZero() {
		recipe.ID = r.NewID()
	}
	applyDefaults(&recipe)

	if i := indexOf(recipes, recipe.ID); i >= 0 {
		recipes[i] = recipe
		return recipes
	}
	return append(recipes, recipe)
}

// lastTouched finds the recipe just written by upsert.
func (r *Repository) lastTouched(recipes []catalog.Recipe, recipe catalog.Recipe) int {
	if !recipe.ID.IsZero() {
		if i := indexOf(recipes, recipe.ID); i >= 0 {
			return i
		}
	}
	return len(recipes) - 1
}

func indexOf(recipes []catalog.Recipe, id recipeid.ID) int {
	for i, rec := range recipes {
		if recipeid.Equal(rec.ID, id) {
			return i
		}
	}
	return -1
}
