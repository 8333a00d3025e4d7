package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLite(t *testing.T, path, key string) *SQLite {
	t.Helper()
	s, err := NewSQLite(path, key, nil)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t, filepath.Join(t.TempDir(), "data", "ledger.db"), "")
	if s.Key() != DefaultKey {
		t.Fatalf("expected default key, got %q", s.Key())
	}

	if _, ok := s.Read(ctx); ok {
		t.Fatalf("fresh database should have no blob")
	}

	for _, v := range []string{`[{"id":"a"}]`, `[]`} {
		if err := s.Write(ctx, []byte(v)); err != nil {
			t.Fatalf("write %q: %v", v, err)
		}
		raw, ok := s.Read(ctx)
		if !ok || string(raw) != v {
			t.Fatalf("expected %q, got %q ok=%v", v, raw, ok)
		}
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := s.Read(ctx); ok {
		t.Fatalf("expected absent after clear")
	}
	// Clearing an absent key is not an error.
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	first, err := NewSQLite(path, "k", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Write(ctx, []byte(`["x"]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	first.Close()

	second := newTestSQLite(t, path, "k")
	raw, ok := second.Read(ctx)
	if !ok || string(raw) != `["x"]` {
		t.Fatalf("value not persisted: %q ok=%v", raw, ok)
	}

	other := newTestSQLite(t, path, "other")
	if _, ok := other.Read(ctx); ok {
		t.Fatalf("keys must be isolated")
	}
}
