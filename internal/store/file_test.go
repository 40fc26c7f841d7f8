package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	type record struct {
		ID    string  `json:"id"`
		Value float64 `json:"value"`
	}
	saved := []record{{ID: "a", Value: 500}, {ID: "b", Value: 300}}

	if err := st.Save(ctx, "freights", saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	var loaded []record
	if err := st.Load(ctx, "freights", &loaded); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0] != saved[0] || loaded[1] != saved[1] {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded, saved)
	}
}

func TestFileStoreMissingKeyLeavesDestUntouched(t *testing.T) {
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	loaded := []string{"sentinel"}
	if err := st.Load(context.Background(), "nope", &loaded); err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != "sentinel" {
		t.Fatalf("dest was modified: %v", loaded)
	}
}

func TestFileStoreCorruptSnapshotFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	path := filepath.Join(dir, "freights.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	var loaded []string
	if err := st.Load(ctx, "freights", &loaded); err != nil {
		t.Fatalf("corrupt snapshot must not error: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty collection, got %v", loaded)
	}

	// The corrupt file is moved aside, not silently destroyed.
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Fatalf("expected corrupt backup file: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("original corrupt file should be gone")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	saved := map[string]int{"a": 1}
	if err := st.Save(ctx, "k", saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	var loaded map[string]int
	if err := st.Load(ctx, "k", &loaded); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded["a"] != 1 {
		t.Fatalf("round trip mismatch: %v", loaded)
	}

	// Unknown keys leave dest untouched.
	var untouched map[string]int
	if err := st.Load(ctx, "other", &untouched); err != nil {
		t.Fatalf("load unknown: %v", err)
	}
	if untouched != nil {
		t.Fatalf("dest was modified: %v", untouched)
	}
}
