// Package shift implements work-shift time tracking: an Idle/Active
// state machine over time entries, a continuously derived elapsed-time
// read model and a day-grouped history view.
package shift

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

const defaultTickEvery = time.Second

// Notifier receives best-effort change notifications after the entry
// collection is persisted. A nil Notifier disables notifications.
type Notifier interface {
	CollectionChanged(ctx context.Context, key string, count int)
}

// Config assembles a Tracker's dependencies.
type Config struct {
	Key      string
	Store    store.Store
	Now      func() time.Time // defaults to time.Now
	Notifier Notifier

	// TickEvery is the elapsed-time recomputation period while a shift
	// is active. Defaults to one second.
	TickEvery time.Duration

	// OnTick, when set, is invoked with the current elapsed time on
	// every tick while a shift is active.
	OnTick func(elapsed time.Duration)
}

// Tracker owns the time-entry collection. At most one entry is open at
// any time; StartShift refuses to open a second one. While a shift is
// active the tracker runs a cancellable periodic tick, stopped on
// leaving the Active state or on Close.
type Tracker struct {
	key       string
	store     store.Store
	now       func() time.Time
	notifier  Notifier
	tickEvery time.Duration
	onTick    func(time.Duration)

	mu       sync.Mutex
	entries  []core.TimeEntry
	stopTick chan struct{} // non-nil while the tick goroutine runs

	closeOnce sync.Once
}

// DaySummary is one day of history: its entries (newest start first)
// and their total duration in milliseconds.
type DaySummary struct {
	Date          core.Date        `json:"date"`
	TotalDuration int64            `json:"totalDuration"`
	Entries       []core.TimeEntry `json:"entries"`
}

// NewTracker loads the stored entries and returns a tracker owning
// them. If an open entry survived a restart the periodic tick resumes
// immediately.
func NewTracker(ctx context.Context, cfg Config) *Tracker {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TickEvery <= 0 {
		cfg.TickEvery = defaultTickEvery
	}

	t := &Tracker{
		key:       cfg.Key,
		store:     cfg.Store,
		now:       cfg.Now,
		notifier:  cfg.Notifier,
		tickEvery: cfg.TickEvery,
		onTick:    cfg.OnTick,
	}
	if err := cfg.Store.Load(ctx, cfg.Key, &t.entries); err != nil {
		slog.WarnContext(ctx, "Time entries load failed, starting empty", "key", cfg.Key, "error", err)
		t.entries = nil
	}
	slog.InfoContext(ctx, "Time entries loaded", "key", cfg.Key, "count", len(t.entries))

	t.mu.Lock()
	if _, ok := t.openEntryLocked(); ok {
		t.startTickLocked()
		slog.InfoContext(ctx, "Resumed open shift after restart", "key", cfg.Key)
	}
	t.mu.Unlock()

	return t
}

// Active reports whether a shift is currently running.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.openEntryLocked()
	return ok
}

// ActiveEntry returns the open entry, if any.
func (t *Tracker) ActiveEntry() (core.TimeEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.openEntryLocked()
	return e, ok
}

// StartShift opens a new entry dated today. Starting while a shift is
// already active is a silent no-op: the existing open entry wins.
func (t *Tracker) StartShift(ctx context.Context) core.TimeEntry {
	now := t.now()

	t.mu.Lock()
	if open, ok := t.openEntryLocked(); ok {
		t.mu.Unlock()
		slog.DebugContext(ctx, "Shift already active, start ignored", "key", t.key, "id", open.ID)
		return open
	}

	entry := core.TimeEntry{
		ID:        uuid.NewString(),
		Date:      core.DateOf(now),
		StartTime: now.UnixMilli(),
	}
	t.entries = append(t.entries, entry)
	count := len(t.entries)
	t.startTickLocked()
	t.mu.Unlock()

	t.persist(ctx, count)
	slog.InfoContext(ctx, "Shift started", "key", t.key, "id", entry.ID, "date", entry.Date.String())
	return entry
}

// EndShift closes the open entry at the current time. Ending while idle
// is a silent no-op. The entry keeps its original date even when the
// shift ran past midnight, so its duration counts toward the start day.
func (t *Tracker) EndShift(ctx context.Context) (core.TimeEntry, bool) {
	now := t.now().UnixMilli()

	t.mu.Lock()
	idx := -1
	for i := range t.entries {
		if t.entries[i].Open() {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		slog.DebugContext(ctx, "No active shift, end ignored", "key", t.key)
		return core.TimeEntry{}, false
	}

	t.entries[idx].EndTime = now
	closed := t.entries[idx]
	count := len(t.entries)
	t.stopTickLocked()
	t.mu.Unlock()

	t.persist(ctx, count)
	slog.InfoContext(ctx, "Shift ended",
		"key", t.key, "id", closed.ID, "duration_ms", closed.Duration(now))
	return closed, true
}

// DeleteEntry removes an entry, open or closed, by id. Removing the
// open entry returns the tracker to Idle. Unknown ids are a no-op.
func (t *Tracker) DeleteEntry(ctx context.Context, id string) {
	t.mu.Lock()
	kept := t.entries[:0]
	removed := false
	removedOpen := false
	for _, e := range t.entries {
		if e.ID == id {
			removed = true
			removedOpen = e.Open()
			continue
		}
		kept = append(kept, e)
	}
	t.entries = kept
	count := len(t.entries)
	if removedOpen {
		t.stopTickLocked()
	}
	t.mu.Unlock()

	if !removed {
		slog.DebugContext(ctx, "Delete for unknown time entry id", "key", t.key, "id", id)
		return
	}

	t.persist(ctx, count)
	slog.InfoContext(ctx, "Time entry deleted", "key", t.key, "id", id, "was_open", removedOpen)
}

// ClearDay removes every entry dated the given day, the open entry
// included when its date matches.
func (t *Tracker) ClearDay(ctx context.Context, date core.Date) {
	t.mu.Lock()
	kept := t.entries[:0]
	removed := 0
	removedOpen := false
	for _, e := range t.entries {
		if core.SameDay(e.Date.Time, date.Time) {
			removed++
			if e.Open() {
				removedOpen = true
			}
			continue
		}
		kept = append(kept, e)
	}
	t.entries = kept
	count := len(t.entries)
	if removedOpen {
		t.stopTickLocked()
	}
	t.mu.Unlock()

	if removed == 0 {
		return
	}

	t.persist(ctx, count)
	slog.InfoContext(ctx, "Day cleared",
		"key", t.key, "date", date.String(), "removed", removed, "was_open", removedOpen)
}

// Entries returns the full collection in insertion order.
func (t *Tracker) Entries() []core.TimeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]core.TimeEntry(nil), t.entries...)
}

// Elapsed derives the current tracked total. While active it is the
// running span plus today's closed entries; while idle it is the sum of
// today's closed entries. The running span is counted unconditionally,
// so a shift crossing midnight keeps ticking.
func (t *Tracker) Elapsed() time.Duration {
	now := t.now()
	nowMs := now.UnixMilli()

	t.mu.Lock()
	defer t.mu.Unlock()

	var total int64
	if open, active := t.openEntryLocked(); active {
		total += nowMs - open.StartTime
	}
	for _, e := range t.entries {
		if e.Open() || !core.SameDay(e.Date.Time, now) {
			continue
		}
		total += e.EndTime - e.StartTime
	}
	return time.Duration(total) * time.Millisecond
}

// DailyHistory groups all entries by date, newest start first within a
// day, days sorted by date descending. Open entries count up to now.
func (t *Tracker) DailyHistory() []DaySummary {
	nowMs := t.now().UnixMilli()

	byDate := make(map[string]*DaySummary)
	for _, e := range t.Entries() {
		key := e.Date.String()
		day, ok := byDate[key]
		if !ok {
			day = &DaySummary{Date: e.Date}
			byDate[key] = day
		}
		day.Entries = append(day.Entries, e)
		day.TotalDuration += e.Duration(nowMs)
	}

	days := make([]DaySummary, 0, len(byDate))
	for _, day := range byDate {
		sort.SliceStable(day.Entries, func(i, j int) bool {
			return day.Entries[i].StartTime > day.Entries[j].StartTime
		})
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date.Time)
	})
	return days
}

// Close stops the periodic tick if it is running. The entry collection
// is already persisted after every mutation, so there is nothing else
// to flush.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.stopTickLocked()
		t.mu.Unlock()
	})
}

func (t *Tracker) openEntryLocked() (core.TimeEntry, bool) {
	for _, e := range t.entries {
		if e.Open() {
			return e, true
		}
	}
	return core.TimeEntry{}, false
}

// startTickLocked launches the periodic recomputation goroutine. The
// caller must hold t.mu.
func (t *Tracker) startTickLocked() {
	if t.stopTick != nil {
		return
	}
	stop := make(chan struct{})
	t.stopTick = stop

	go func() {
		ticker := time.NewTicker(t.tickEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if t.onTick != nil {
					t.onTick(t.Elapsed())
				}
			case <-stop:
				return
			}
		}
	}()
}

// stopTickLocked cancels the periodic tick. The caller must hold t.mu.
func (t *Tracker) stopTickLocked() {
	if t.stopTick == nil {
		return
	}
	close(t.stopTick)
	t.stopTick = nil
}

func (t *Tracker) persist(ctx context.Context, count int) {
	t.mu.Lock()
	snapshot := append([]core.TimeEntry(nil), t.entries...)
	t.mu.Unlock()

	if err := t.store.Save(ctx, t.key, snapshot); err != nil {
		slog.ErrorContext(ctx, "Failed to persist time entries", "key", t.key, "error", err)
		return
	}
	if t.notifier != nil {
		t.notifier.CollectionChanged(ctx, t.key, count)
	}
}
