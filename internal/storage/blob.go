package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Blob reads and writes one JSON document stored under a single key.
type Blob[T any] struct {
	kv     KV
	key    string
	logger zerolog.Logger
}

// NewBlob binds a JSON document of type T to key.
func NewBlob[T any](kv KV, key string, logger zerolog.Logger) *Blob[T] {
	return &Blob[T]{kv: kv, key: key, logger: logger}
}

// Key returns the persisted key.
func (b *Blob[T]) Key() string {
	return b.key
}

// Load decodes the stored document. found reports whether the key holds a
// value at all: a missing or blank key gives found=false, an undecodable
// value is logged and gives the zero value with found=true. Only I/O
// failures are returned.
func (b *Blob[T]) Load(ctx context.Context) (T, bool, error) {
	var v T

	raw, found, err := b.kv.Get(ctx, b.key)
	if err != nil {
		return v, false, fmt.Errorf("failed to read %s: %w", b.key, err)
	}
	if !found || strings.TrimSpace(raw) == "" {
		return v, false, nil
	}

	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		b.logger.Warn().
			Err(fmt.Errorf("%w: %v", ErrMalformed, err)).
			Str("key", b.key).
			Msg("treating persisted value as empty")
		var zero T
		return zero, true, nil
	}
	return v, true, nil
}

// Save encodes v and overwrites the stored document.
func (b *Blob[T]) Save(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", b.key, err)
	}
	if err := b.kv.Set(ctx, b.key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", b.key, err)
	}
	return nil
}
