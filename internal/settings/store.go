// Package settings stores the theme preference and per-theme colour
// overrides.
package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/fdg312/cookbook/internal/storage"
	"github.com/rs/zerolog"
)

// Store owns cookbook-theme (a bare string) and cookbook-theme-overrides.
type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	overrides *storage.Blob[Overrides]
	logger    zerolog.Logger
}

func NewStore(kv storage.KV, logger zerolog.Logger) *Store {
	return &Store{
		kv:        kv,
		overrides: storage.NewBlob[Overrides](kv, storage.KeyThemeOverrides, logger),
		logger:    logger,
	}
}

// theme must be called with s.mu held. A missing preference is derived
// from the legacy key once and written back.
func (s *Store) theme(ctx context.Context) (string, error) {
	theme, ok, err := s.kv.Get(ctx, storage.KeyTheme)
	if err != nil {
		return "", fmt.Errorf("failed to read theme: %w", err)
	}
	if ok && theme != "" {
		return theme, nil
	}

	legacy, _, err := s.kv.Get(ctx, storage.KeyLegacyTheme)
	if err != nil {
		return "", fmt.Errorf("failed to read legacy theme: %w", err)
	}
	theme = themeFromLegacy(legacy)
	if err := s.kv.Set(ctx, storage.KeyTheme, theme); err != nil {
		return "", fmt.Errorf("failed to save theme: %w", err)
	}
	s.logger.Info().Str("legacy", legacy).Str("theme", theme).Msg("theme preference initialised")
	return theme, nil
}

func (s *Store) loadOverrides(ctx context.Context) (Overrides, error) {
	all, _, err := s.overrides.Load(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = Overrides{}
	}
	return all, nil
}

// Get returns the active theme and its overrides.
func (s *Store) Get(ctx context.Context) (ThemeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	theme, err := s.theme(ctx)
	if err != nil {
		return ThemeResponse{}, err
	}
	all, err := s.loadOverrides(ctx)
	if err != nil {
		return ThemeResponse{}, err
	}
	return response(theme, all), nil
}

// SetTheme switches the active theme.
func (s *Store) SetTheme(ctx context.Context, theme string) (ThemeResponse, error) {
	if !themePattern.MatchString(theme) {
		return ThemeResponse{}, ErrInvalidTheme
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, storage.KeyTheme, theme); err != nil {
		return ThemeResponse{}, fmt.Errorf("failed to save theme: %w", err)
	}
	all, err := s.loadOverrides(ctx)
	if err != nil {
		return ThemeResponse{}, err
	}
	return response(theme, all), nil
}

// SetOverride stores one colour. Setting the primary colour also derives
// its translucent soft variant.
func (s *Store) SetOverride(ctx context.Context, req OverrideRequest) (map[string]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadOverrides(ctx)
	if err != nil {
		return nil, err
	}
	if all[req.Theme] == nil {
		all[req.Theme] = map[string]string{}
	}
	all[req.Theme][req.Var] = req.Color
	if req.Var == primaryVar {
		all[req.Theme][primarySoftVar] = req.Color + "1a"
	}

	if err := s.overrides.Save(ctx, all); err != nil {
		return nil, err
	}
	return copyVars(all[req.Theme]), nil
}

// ResetOverrides drops every override of theme.
func (s *Store) ResetOverrides(ctx context.Context, theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadOverrides(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[theme]; !ok {
		return nil
	}
	delete(all, theme)
	return s.overrides.Save(ctx, all)
}

func response(theme string, all Overrides) ThemeResponse {
	return ThemeResponse{Theme: theme, Overrides: copyVars(all[theme])}
}

func copyVars(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}
