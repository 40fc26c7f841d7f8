// Package store implements the persistence port used by the ledger and
// shift components: named collection snapshots saved to and loaded from
// durable local storage.
//
// A missing or corrupt snapshot never propagates an error to the caller;
// Load leaves dest untouched so the caller starts from an empty collection.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Store loads and saves named collection snapshots.
type Store interface {
	// Load unmarshals the snapshot stored under key into dest. A missing
	// or unreadable snapshot leaves dest untouched and returns nil.
	Load(ctx context.Context, key string, dest any) error

	// Save serializes value and stores it under key, replacing any
	// previous snapshot.
	Save(ctx context.Context, key string, value any) error
}

// MemoryStore keeps serialized snapshots in memory. It is the default
// backend and the one tests run against. Snapshots go through JSON so a
// save/load round trip behaves exactly like the durable backends.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string, dest any) error {
	s.mu.Lock()
	data, ok := s.snapshots[key]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt snapshot: fall back to empty, per the port contract.
		return nil
	}
	return nil
}

func (s *MemoryStore) Save(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}
	s.mu.Lock()
	s.snapshots[key] = data
	s.mu.Unlock()
	return nil
}
