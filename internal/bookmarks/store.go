// Package bookmarks stores the set of favorited recipe ids.
package bookmarks

import (
	"context"
	"sync"

	"github.com/fdg312/cookbook/internal/recipeid"
	"github.com/fdg312/cookbook/internal/storage"
	"github.com/rs/zerolog"
)

// Store owns the cookbook-bookmarks key. Every mutation is a full
// read-modify-write of the persisted set.
type Store struct {
	mu   sync.Mutex
	blob *storage.Blob[[]recipeid.ID]
}

// NewStore creates a bookmark store on kv.
func NewStore(kv storage.KV, logger zerolog.Logger) *Store {
	return &Store{blob: storage.NewBlob[[]recipeid.ID](kv, storage.KeyBookmarks, logger)}
}

func (s *Store) load(ctx context.Context) ([]recipeid.ID, error) {
	ids, _, err := s.blob.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []recipeid.ID{}
	}
	return ids, nil
}

// List returns bookmarked ids in insertion order.
func (s *Store) List(ctx context.Context) ([]recipeid.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Has reports whether id is bookmarked.
func (s *Store) Has(ctx context.Context, id recipeid.ID) (bool, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return recipeid.Contains(ids, id), nil
}

// Toggle flips membership and returns the new state.
func (s *Store) Toggle(ctx context.Context, id recipeid.ID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return false, err
	}

	if rest, removed := recipeid.Without(ids, id); removed {
		return false, s.blob.Save(ctx, rest)
	}
	return true, s.blob.Save(ctx, append(ids, id))
}

// Add bookmarks id; a no-op when already present.
func (s *Store) Add(ctx context.Context, id recipeid.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return err
	}
	if recipeid.Contains(ids, id) {
		return nil
	}
	return s.blob.Save(ctx, append(ids, id))
}

// Remove drops id; a no-op when absent.
func (s *Store) Remove(ctx context.Context, id recipeid.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.load(ctx)
	if err != nil {
		return err
	}
	rest, removed := recipeid.Without(ids, id)
	if !removed {
		return nil
	}
	return s.blob.Save(ctx, rest)
}
