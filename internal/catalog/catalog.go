// Package catalog holds the in-memory union of static and custom recipes.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/rs/zerolog"
)

var ErrRecipeNotFound = errors.New("recipe not found")

// CustomLister supplies user-authored recipes.
type CustomLister interface {
	List(ctx context.Context) ([]Recipe, error)
}

// Status describes the last load.
type Status struct {
	Source   string    `json:"source"`
	Total    int       `json:"total"`
	Static   int       `json:"static"`
	Custom   int       `json:"custom"`
	Degraded bool      `json:"degraded"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Catalog owns the merged recipe list: static recipes first, then custom ones.
type Catalog struct {
	source Source
	custom CustomLister
	logger zerolog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	static   []Recipe
	recipes  []Recipe
	degraded bool
	loadedAt time.Time
}

// New creates an empty catalog. Call Load before serving reads.
func New(source Source, custom CustomLister, logger zerolog.Logger) *Catalog {
	return &Catalog{
		source: source,
		custom: custom,
		logger: logger,
		now:    time.Now,
	}
}

// Load fetches the static source and merges custom recipes. A failing source
// degrades the catalog to custom recipes only; the error is logged, not returned.
func (c *Catalog) Load(ctx context.Context) error {
	return c.Reload(ctx)
}

// Reload refetches the static source and re-merges custom recipes.
func (c *Catalog) Reload(ctx context.Context) error {
	static, degraded := c.fetchStatic(ctx)

	custom, err := c.custom.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list custom recipes: %w", err)
	}

	c.mu.Lock()
	c.static = static
	c.degraded = degraded
	c.set(custom)
	c.mu.Unlock()

	c.logger.Info().
		Int("static", len(static)).
		Int("custom", len(custom)).
		Bool("degraded", degraded).
		Msg("catalog loaded")
	return nil
}

// Refresh re-merges custom recipes with the already fetched static set.
func (c *Catalog) Refresh(ctx context.Context) error {
	custom, err := c.custom.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list custom recipes: %w", err)
	}

	c.mu.Lock()
	c.set(custom)
	c.mu.Unlock()
	return nil
}

func (c *Catalog) fetchStatic(ctx context.Context) ([]Recipe, bool) {
	if c.source == nil {
		c.logger.Warn().Err(ErrSourceUnavailable).Msg("no catalog source, using custom recipes only")
		return nil, true
	}

	static, err := c.source.Fetch(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Str("source", c.source.Name()).Msg("catalog source failed, using custom recipes only")
		return nil, true
	}
	return static, false
}

// set must be called with c.mu held.
func (c *Catalog) set(custom []Recipe) {
	merged := make([]Recipe, 0, len(c.static)+len(custom))
	merged = append(merged, c.static...)
	merged = append(merged, custom...)
	c.recipes = merged
	c.loadedAt = c.now()
}

// All returns the merged list in catalog order.
func (c *Catalog) All() []Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

// FindByID looks a recipe up with normalized id comparison.
func (c *Catalog) FindByID(id recipeid.ID) (Recipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, r := range c.recipes {
		if recipeid.Equal(r.ID, id) {
			return r, true
		}
	}
	return Recipe{}, false
}

// Categories returns distinct non-empty categories in first-seen order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, r := range c.recipes {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		out = append(out, r.Category)
	}
	return out
}

// Status reports counts and the degradation flag of the last load.
func (c *Catalog) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name := "none"
	if c.source != nil {
		name = c.source.Name()
	}
	return Status{
		Source:   name,
		Total:    len(c.recipes),
		Static:   len(c.static),
		Custom:   len(c.recipes) - len(c.static),
		Degraded: c.degraded,
		LoadedAt: c.loadedAt,
	}
}
