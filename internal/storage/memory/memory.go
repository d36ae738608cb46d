package memory

import (
	"context"
	"sync"
)

// MemoryStorage - in-memory реализация storage.KV
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// New создаёт пустой MemoryStorage
func New() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Close для in-memory хранилища ничего не делает
func (s *MemoryStorage) Close() error {
	return nil
}
