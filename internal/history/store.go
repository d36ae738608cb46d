// Package history stores per-recipe cook events.
package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/cookbook/internal/meals"
	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/fdg312/cookbook/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store owns the cookbook-cook-history key: an object keyed by recipe id.
type Store struct {
	mu     sync.Mutex
	blob   *storage.Blob[map[string]*Record]
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

// NewStore creates a cook history store on kv.
func NewStore(kv storage.KV, logger zerolog.Logger) *Store {
	return &Store{
		blob:   storage.NewBlob[map[string]*Record](kv, storage.KeyCookHistory, logger),
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock replaces the current-time source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// WithTokens replaces the entry id generator.
func (s *Store) WithTokens(newID func() string) *Store {
	s.newID = newID
	return s
}

// Migrate runs the legacy upgrade once and persists it if needed.
// Every load runs the same idempotent pass, so calling it is optional.
func (s *Store) Migrate(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, upgraded, err := s.load(ctx)
	return upgraded, err
}

// load must be called with s.mu held.
func (s *Store) load(ctx context.Context) (map[string]*Record, bool, error) {
	all, _, err := s.blob.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	if all == nil {
		all = map[string]*Record{}
	}

	if !upgradeLegacyEntries(all, s.newID) {
		return all, false, nil
	}
	if err := s.blob.Save(ctx, all); err != nil {
		return nil, false, err
	}
	s.logger.Info().Int("recipes", len(all)).Msg("upgraded legacy cook history entries")
	return all, true, nil
}

// findKey resolves recipeID to the persisted key using normalized comparison.
func findKey(all map[string]*Record, recipeID recipeid.ID) (string, bool) {
	if _, ok := all[recipeID.String()]; ok {
		return recipeID.String(), true
	}
	for key := range all {
		if recipeid.Equal(recipeid.FromString(key), recipeID) {
			return key, true
		}
	}
	return "", false
}

// All returns every record keyed by recipe id.
func (s *Store) All(ctx context.Context) (map[string]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Record, len(all))
	for key, rec := range all {
		out[key] = rec.clone()
	}
	return out, nil
}

// Get returns the record for one recipe.
func (s *Store) Get(ctx context.Context, recipeID recipeid.ID) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.load(ctx)
	if err != nil {
		return Record{}, false, err
	}
	key, ok := findKey(all, recipeID)
	if !ok {
		return Record{}, false, nil
	}
	return all[key].clone(), true, nil
}

// AddEntry records a cook event. An empty date means today, an empty meal
// means unknown.
func (s *Store) AddEntry(ctx context.Context, recipeID recipeid.ID, date string, meal meals.Slot) (Record, error) {
	if date == "" {
		date = meals.Today(s.now())
	}
	if _, err := meals.ParseDate(date); err != nil {
		return Record{}, err
	}
	if meal == "" {
		meal = meals.Unknown
	}
	if !meal.IsValid() {
		return Record{}, meals.ErrInvalidSlot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.load(ctx)
	if err != nil {
		return Record{}, err
	}

	key, ok := findKey(all, recipeID)
	if !ok {
		key = recipeID.String()
		all[key] = &Record{Entries: []Entry{}}
	}
	rec := all[key]
	rec.Entries = append(rec.Entries, Entry{ID: s.newID(), Date: date, Meal: meal})
	rec.normalize()

	if err := s.blob.Save(ctx, all); err != nil {
		return Record{}, err
	}
	return rec.clone(), nil
}

// MarkCooked records a cook event for today with an unknown meal.
func (s *Store) MarkCooked(ctx context.Context, recipeID recipeid.ID) (Record, error) {
	return s.AddEntry(ctx, recipeID, meals.Today(s.now()), meals.Unknown)
}

// UpdateEntry merges patch into an entry. found=false when the recipe or
// entry does not exist; nothing is written in that case.
func (s *Store) UpdateEntry(ctx context.Context, recipeID recipeid.ID, entryID string, patch EntryPatch) (Record, bool, error) {
	if patch.Date != nil {
		if _, err := meals.ParseDate(*patch.Date); err != nil {
			return Record{}, false, err
		}
	}
	if patch.Meal != nil && !patch.Meal.IsValid() {
		return Record{}, false, meals.ErrInvalidSlot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.load(ctx)
	if err != nil {
		return Record{}, false, err
	}
	key, ok := findKey(all, recipeID)
	if !ok {
		return Record{}, false, nil
	}
	rec := all[key]

	idx := indexOf(rec.Entries, entryID)
	if idx < 0 {
		return Record{}, false, nil
	}
	if patch.Date != nil {
		rec.Entries[idx].Date = *patch.Date
	}
	if patch.Meal != nil {
		rec.Entries[idx].Meal = *patch.Meal
	}
	rec.normalize()

	if err := s.blob.Save(ctx, all); err != nil {
		return Record{}, false, err
	}
	return rec.clone(), true, nil
}

// DeleteEntry removes one entry. The record stays (possibly empty) so the
// recipe keeps a count of zero and a null lastCooked.
func (s *Store) DeleteEntry(ctx context.Context, recipeID recipeid.ID, entryID string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.load(ctx)
	if err != nil {
		return Record{}, false, err
	}
	key, ok := findKey(all, recipeID)
	if !ok {
		return Record{}, false, nil
	}
	rec := all[key]

	idx := indexOf(rec.Entries, entryID)
	if idx < 0 {
		return Record{}, false, nil
	}
	rec.Entries = append(rec.Entries[:idx], rec.Entries[idx+1:]...)
	rec.normalize()

	if err := s.blob.Save(ctx, all); err != nil {
		return Record{}, false, err
	}
	return rec.clone(), true, nil
}

// DeleteForRecipe drops the whole record. Used by the custom recipe
// deletion cascade.
func (s *Store) DeleteForRecipe(ctx context.Context, recipeID recipeid.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, _, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	key, ok := findKey(all, recipeID)
	if !ok {
		return false, nil
	}
	delete(all, key)
	return true, s.blob.Save(ctx, all)
}

// RecentlyCooked returns records with a lastCooked date, newest first,
// truncated to limit (limit <= 0 means no limit).
func (s *Store) RecentlyCooked(ctx context.Context, limit int) ([]Recent, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Recent, 0, len(keys))
	for _, key := range keys {
		rec := all[key]
		if rec.LastCooked == nil {
			continue
		}
		out = append(out, Recent{RecipeID: recipeid.Parse(key), Record: rec})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].LastCooked > *out[j].LastCooked
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func indexOf(entries []Entry, entryID string) int {
	for i, e := range entries {
		if e.ID == entryID {
			return i
		}
	}
	return -1
}
