package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/fdg312/cookbook/internal/storage"
)

var _ storage.KV = (*PostgresStorage)(nil)

// Requires a migrated database; set TEST_DATABASE_URL to run.
func TestPostgresStorageRoundTrip(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	key := "test-roundtrip"
	defer s.Delete(ctx, key)

	if err := s.Set(ctx, key, "one"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, key, "two"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	v, found, err := s.Get(ctx, key)
	if err != nil || !found || v != "two" {
		t.Fatalf("unexpected get: %q found=%v err=%v", v, found, err)
	}
}
