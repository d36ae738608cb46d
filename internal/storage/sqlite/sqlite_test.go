package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fdg312/cookbook/internal/storage"
)

var _ storage.KV = (*SQLiteStorage)(nil)

func newTestStorage(t *testing.T, name string) *SQLiteStorage {
	t.Helper()
	s, err := New("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStorageUpsert(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, "kv_upsert")

	if _, found, err := s.Get(ctx, storage.KeyCollections); err != nil || found {
		t.Fatalf("expected missing key, got found=%v err=%v", found, err)
	}

	if err := s.Set(ctx, storage.KeyCollections, `{"a":1}`); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := s.Set(ctx, storage.KeyCollections, `{"a":2}`); err != nil {
		t.Fatalf("second set: %v", err)
	}

	v, found, err := s.Get(ctx, storage.KeyCollections)
	if err != nil || !found {
		t.Fatalf("expected value, got found=%v err=%v", found, err)
	}
	if v != `{"a":2}` {
		t.Errorf("expected overwritten value, got %s", v)
	}

	var count int64
	s.db.Model(&Entry{}).Count(&count)
	if count != 1 {
		t.Errorf("expected a single row per key, got %d", count)
	}
}

func TestSQLiteStorageDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, "kv_delete")

	if err := s.Set(ctx, storage.KeyLegacyTheme, "dark"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Delete(ctx, storage.KeyLegacyTheme); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, storage.KeyLegacyTheme); found {
		t.Error("expected key to be gone")
	}
}

func TestSQLiteStorageFileCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cookbook.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("expected parent dir to be created, got %v", err)
	}
	defer s.Close()

	if err := s.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
}
