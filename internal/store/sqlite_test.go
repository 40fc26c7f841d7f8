package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	saved := []string{"a", "b", "c"}
	if err := st.Save(ctx, "time_entries", saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	var loaded []string
	if err := st.Load(ctx, "time_entries", &loaded); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 3 || loaded[0] != "a" || loaded[2] != "c" {
		t.Fatalf("round trip mismatch: %v", loaded)
	}
}

func TestSQLiteStoreSaveReplacesSnapshot(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	if err := st.Save(ctx, "k", []int{1, 2, 3}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := st.Save(ctx, "k", []int{9}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var loaded []int
	if err := st.Load(ctx, "k", &loaded); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != 9 {
		t.Fatalf("expected the replacement snapshot, got %v", loaded)
	}
}

func TestSQLiteStoreMissingKey(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer st.Close()

	loaded := []int{7}
	if err := st.Load(context.Background(), "nope", &loaded); err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != 7 {
		t.Fatalf("dest was modified: %v", loaded)
	}
}
