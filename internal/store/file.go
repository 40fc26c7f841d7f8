package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore persists one JSON document per key under a base directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the base directory if needed and returns a store
// writing <dir>/<key>.json files.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Load(ctx context.Context, key string, dest any) error {
	path := s.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		slog.WarnContext(ctx, "Snapshot unreadable, starting empty", "key", key, "path", path, "error", err)
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Back up the corrupt file so the next save does not destroy evidence.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		slog.WarnContext(ctx, "Corrupt snapshot backed up, starting empty",
			"key", key, "path", path, "backup", backupPath, "error", err)
		return nil
	}
	return nil
}

func (s *FileStore) Save(_ context.Context, key string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}

	// Atomic write: write to temp file then rename.
	path := s.path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write temp snapshot %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp snapshot %s: %w", key, err)
	}
	return nil
}
