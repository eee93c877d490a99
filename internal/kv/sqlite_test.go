package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"), 2)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, ok, err := s.GetString(ctx, "k"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.SetString(ctx, "k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetString(ctx, "k", "v2"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := s.GetString(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got != "v2" {
		t.Errorf("expected 'v2', got %q", got)
	}
}

func TestFlushPrunesRevisions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, v := range []string{"a", "b", "c", "d"} {
		s.SetString(ctx, "k", v)
	}
	s.SetString(ctx, "other", "x")

	revs, _ := s.Revisions(ctx, "k")
	if len(revs) != 4 {
		t.Fatalf("expected 4 revisions before flush, got %d", len(revs))
	}

	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	revs, _ = s.Revisions(ctx, "k")
	if len(revs) != 2 {
		t.Fatalf("expected 2 revisions after flush, got %d", len(revs))
	}
	if revs[0].Revision != 4 || revs[1].Revision != 3 {
		t.Errorf("expected revisions 4,3 got %d,%d", revs[0].Revision, revs[1].Revision)
	}

	got, _, _ := s.GetString(ctx, "k")
	if got != "d" {
		t.Errorf("expected latest 'd' after flush, got %q", got)
	}
	if other, ok, _ := s.GetString(ctx, "other"); !ok || other != "x" {
		t.Errorf("expected other key untouched, got %q ok=%v", other, ok)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.SetString(ctx, "a", "1")
	s.SetString(ctx, "a", "2")
	s.SetString(ctx, "b", "1")

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Revisions != 3 {
		t.Errorf("expected 3 revisions, got %d", st.Revisions)
	}
	if len(st.Keys) != 2 || st.Keys[0].Key != "a" || st.Keys[0].Latest != 2 {
		t.Errorf("unexpected key stats: %+v", st.Keys)
	}
}

func TestSecondOpenIsLocked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	s, err := NewSQLiteStore(path, 0)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	_, err = NewSQLiteStore(path, 0)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	s.Close()
	s2, err := NewSQLiteStore(path, 0)
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	s2.Close()
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath, 0)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), Options{Backend: "floppy"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := Open(context.Background(), Options{Backend: BackendRedis}); err == nil {
		t.Fatal("expected error for redis without URL")
	}
}
