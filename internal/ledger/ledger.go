// Package ledger implements the record engine behind the freight and
// expense views: an insertion-ordered collection of dated monetary
// records with filtered queries and aggregate stats.
package ledger

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"freteiro/internal/core"
	"freteiro/internal/store"
)

// Notifier receives best-effort change notifications after a collection
// is persisted. A nil Notifier disables notifications.
type Notifier interface {
	CollectionChanged(ctx context.Context, key string, count int)
}

// Engine owns one record collection (freights or expenses) for the
// lifetime of the process. All mutations persist the full collection
// through the store; persistence failures are logged, never surfaced.
type Engine struct {
	key      string
	store    store.Store
	now      func() time.Time
	notifier Notifier

	mu      sync.Mutex
	records []core.Record
}

// AddInput carries the caller-supplied fields of a new record. The
// engine assigns ID and CreatedAt itself.
type AddInput struct {
	Label       string
	Description string
	Date        core.Date
	Value       float64
}

// NewEngine loads the collection stored under key and returns an engine
// owning it. The clock is injected so tests can supply a fixed one.
func NewEngine(ctx context.Context, key string, s store.Store, now func() time.Time, notifier Notifier) *Engine {
	if now == nil {
		now = time.Now
	}
	e := &Engine{key: key, store: s, now: now, notifier: notifier}
	if err := s.Load(ctx, key, &e.records); err != nil {
		// The store contract already swallows read failures; this is a
		// second line of defense for misbehaving implementations.
		slog.WarnContext(ctx, "Collection load failed, starting empty", "key", key, "error", err)
		e.records = nil
	}
	slog.InfoContext(ctx, "Collection loaded", "key", key, "count", len(e.records))
	return e
}

// Add appends a new record with a fresh id and CreatedAt, most recent
// insertion first, and persists the collection.
func (e *Engine) Add(ctx context.Context, in AddInput) core.Record {
	rec := core.Record{
		ID:          uuid.NewString(),
		Label:       in.Label,
		Description: in.Description,
		Date:        in.Date,
		Value:       in.Value,
		CreatedAt:   e.now().UnixMilli(),
	}

	e.mu.Lock()
	e.records = append([]core.Record{rec}, e.records...)
	count := len(e.records)
	e.mu.Unlock()

	e.persist(ctx, count)

	slog.InfoContext(ctx, "Record added",
		"key", e.key, "id", rec.ID, "label", rec.Label, "date", rec.Date.String(), "value", rec.Value)
	return rec
}

// Delete removes the record with the given id. Deleting an absent id is
// a no-op, not an error.
func (e *Engine) Delete(ctx context.Context, id string) {
	e.mu.Lock()
	kept := e.records[:0]
	removed := false
	for _, r := range e.records {
		if r.ID == id {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	e.records = kept
	count := len(e.records)
	e.mu.Unlock()

	if !removed {
		slog.DebugContext(ctx, "Delete for unknown record id", "key", e.key, "id", id)
		return
	}

	e.persist(ctx, count)
	slog.InfoContext(ctx, "Record deleted", "key", e.key, "id", id)
}

// List returns the full collection in insertion order (newest first).
func (e *Engine) List() []core.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Record(nil), e.records...)
}

// Query returns the subset of List whose date falls inside the filter's
// window, sorted by date descending. The sort is stable so ties keep
// their insertion order.
func (e *Engine) Query(filter core.DateFilter) []core.Record {
	now := e.now()

	var out []core.Record
	for _, r := range e.List() {
		if filter.Matches(r.Date, now) {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

func (e *Engine) persist(ctx context.Context, count int) {
	e.mu.Lock()
	snapshot := append([]core.Record(nil), e.records...)
	e.mu.Unlock()

	if err := e.store.Save(ctx, e.key, snapshot); err != nil {
		// Best-effort: the in-memory collection stays authoritative.
		slog.ErrorContext(ctx, "Failed to persist collection", "key", e.key, "error", err)
		return
	}
	if e.notifier != nil {
		e.notifier.CollectionChanged(ctx, e.key, count)
	}
}
