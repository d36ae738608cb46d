// Package collections stores user-defined groups of recipe ids.
package collections

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/fdg312/cookbook/internal/storage"
	"github.com/rs/zerolog"
)

// Store owns the cookbook-collections key.
type Store struct {
	mu     sync.Mutex
	blob   *storage.Blob[map[string]record]
	logger zerolog.Logger
}

// NewStore creates a collection store on kv.
func NewStore(kv storage.KV, logger zerolog.Logger) *Store {
	return &Store{
		blob:   storage.NewBlob[map[string]record](kv, storage.KeyCollections, logger),
		logger: logger,
	}
}

// load returns the persisted mapping, seeding the defaults only when the key
// is absent. A malformed value reads as empty and is left in place.
func (s *Store) load(ctx context.Context) (map[string]record, error) {
	all, found, err := s.blob.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		all = defaults()
		if err := s.blob.Save(ctx, all); err != nil {
			return nil, err
		}
		s.logger.Info().Int("count", len(all)).Msg("seeded default collections")
		return all, nil
	}
	if all == nil {
		all = map[string]record{}
	}
	return all, nil
}

// All returns the full mapping keyed by collection id.
func (s *Store) All(ctx context.Context) (map[string]Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Collection, len(all))
	for id, rec := range all {
		out[id] = rec.toCollection(id)
	}
	return out, nil
}

// List returns every collection sorted by name.
func (s *Store) List(ctx context.Context) ([]Collection, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return sorted(all), nil
}

// Get returns one collection.
func (s *Store) Get(ctx context.Context, id string) (Collection, bool, error) {
	all, err := s.All(ctx)
	if err != nil {
		return Collection{}, false, err
	}
	c, ok := all[id]
	return c, ok, nil
}

// Create adds an empty collection and returns its derived id.
func (s *Store) Create(ctx context.Context, name, icon string) (string, error) {
	id := Slug(name)
	if strings.Trim(id, "-") == "" {
		return "", ErrInvalidName
	}
	if icon == "" {
		icon = DefaultIcon
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	if _, exists := all[id]; exists {
		return "", ErrDuplicateCollection
	}

	all[id] = record{Name: name, Icon: icon, Recipes: []recipeid.ID{}}
	if err := s.blob.Save(ctx, all); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a collection. Recipes are not touched.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, id, func(all map[string]record, rec record) bool {
		delete(all, id)
		return true
	})
}

// Rename changes the display name and, when newIcon is non-empty, the icon.
// The id stays the same.
func (s *Store) Rename(ctx context.Context, id, newName, newIcon string) error {
	if strings.TrimSpace(newName) == "" {
		return ErrInvalidName
	}
	return s.mutate(ctx, id, func(all map[string]record, rec record) bool {
		rec.Name = newName
		if newIcon != "" {
			rec.Icon = newIcon
		}
		all[id] = rec
		return true
	})
}

// AddRecipe appends recipeID unless the collection already holds it.
func (s *Store) AddRecipe(ctx context.Context, collectionID string, recipeID recipeid.ID) error {
	return s.mutate(ctx, collectionID, func(all map[string]record, rec record) bool {
		if recipeid.Contains(rec.Recipes, recipeID) {
			return false
		}
		rec.Recipes = append(rec.Recipes, recipeID)
		all[collectionID] = rec
		return true
	})
}

// RemoveRecipe filters recipeID out of one collection.
func (s *Store) RemoveRecipe(ctx context.Context, collectionID string, recipeID recipeid.ID) error {
	return s.mutate(ctx, collectionID, func(all map[string]record, rec record) bool {
		rest, removed := recipeid.Without(rec.Recipes, recipeID)
		if !removed {
			return false
		}
		rec.Recipes = rest
		all[collectionID] = rec
		return true
	})
}

// mutate loads, checks existence, applies fn and persists when fn reports a change.
func (s *Store) mutate(ctx context.Context, id string, fn func(all map[string]record, rec record) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	rec, ok := all[id]
	if !ok {
		return ErrNotFound
	}
	if !fn(all, rec) {
		return nil
	}
	return s.blob.Save(ctx, all)
}

// IsInCollection reports whether the collection exists and holds recipeID.
func (s *Store) IsInCollection(ctx context.Context, collectionID string, recipeID recipeid.ID) (bool, error) {
	c, ok, err := s.Get(ctx, collectionID)
	if err != nil || !ok {
		return false, err
	}
	return recipeid.Contains(c.Recipes, recipeID), nil
}

// CollectionsContaining lists collections that hold recipeID, sorted by name.
func (s *Store) CollectionsContaining(ctx context.Context, recipeID recipeid.ID) ([]Collection, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Collection, 0)
	for _, c := range sorted(all) {
		if recipeid.Contains(c.Recipes, recipeID) {
			out = append(out, c)
		}
	}
	return out, nil
}

// RecipesIn returns the ids of a collection; found=false when it does not exist.
func (s *Store) RecipesIn(ctx context.Context, collectionID string) ([]recipeid.ID, bool, error) {
	c, ok, err := s.Get(ctx, collectionID)
	if err != nil || !ok {
		return []recipeid.ID{}, ok, err
	}
	return c.Recipes, true, nil
}

// RemoveRecipeFromAll filters recipeID out of every collection and persists
// once if anything changed. Used by the custom recipe deletion cascade.
func (s *Store) RemoveRecipeFromAll(ctx context.Context, recipeID recipeid.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	changed := false
	for id, rec := range all {
		rest, removed := recipeid.Without(rec.Recipes, recipeID)
		if removed {
			rec.Recipes = rest
			all[id] = rec
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	return true, s.blob.Save(ctx, all)
}

func sorted(all map[string]Collection) []Collection {
	out := make([]Collection, 0, len(all))
	for _, c := range all {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
