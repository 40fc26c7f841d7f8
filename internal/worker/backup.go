// Package worker mirrors persisted collection snapshots into a backup
// directory, driven by AMQP change events plus a periodic full sweep.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"freteiro/internal/events"
	"freteiro/internal/store"
)

// BackupWorker copies snapshots from the primary store to plain JSON
// files. It is optional infrastructure; the engines never depend on it.
type BackupWorker struct {
	store     store.Store
	backupDir string
	keys      []string
}

func NewBackupWorker(s store.Store, backupDir string, keys []string) (*BackupWorker, error) {
	if err := os.MkdirAll(backupDir, 0o700); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	return &BackupWorker{store: s, backupDir: backupDir, keys: keys}, nil
}

// HandleChange processes a single change event by re-reading the named
// snapshot and mirroring it.
func (w *BackupWorker) HandleChange(ctx context.Context, msg *events.CollectionChangedMessage) error {
	slog.InfoContext(ctx, "Processing change event", "key", msg.Key, "count", msg.Count)
	return w.backupKey(ctx, msg.Key)
}

// BackupAll mirrors every known collection, used for the periodic sweep
// and the startup catch-up.
func (w *BackupWorker) BackupAll(ctx context.Context) error {
	for _, key := range w.keys {
		if err := w.backupKey(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (w *BackupWorker) backupKey(ctx context.Context, key string) error {
	var snapshot json.RawMessage
	if err := w.store.Load(ctx, key, &snapshot); err != nil {
		return fmt.Errorf("load snapshot %s: %w", key, err)
	}
	if snapshot == nil {
		slog.DebugContext(ctx, "No snapshot to back up", "key", key)
		return nil
	}

	path := filepath.Join(w.backupDir, key+".json")
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, snapshot, 0o600); err != nil {
		return fmt.Errorf("write backup %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename backup %s: %w", key, err)
	}

	slog.InfoContext(ctx, "Snapshot backed up", "key", key, "path", path, "bytes", len(snapshot))
	return nil
}
