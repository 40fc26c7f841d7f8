package shift

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"freteiro/internal/core"
	"freteiro/internal/store"
)

// testClock is an adjustable clock injected into trackers under test.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 12, 8, 0, 0, 0, time.Local)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker(t *testing.T, clk *testClock, st *store.MemoryStore) *Tracker {
	t.Helper()
	tr := NewTracker(context.Background(), Config{
		Key:   "time_entries",
		Store: st,
		Now:   clk.Now,
	})
	t.Cleanup(tr.Close)
	return tr
}

func TestStartShiftTwiceKeepsOneOpenEntry(t *testing.T) {
	clk := newTestClock()
	tr := newTestTracker(t, clk, store.NewMemoryStore())
	ctx := context.Background()

	first := tr.StartShift(ctx)
	clk.advance(time.Minute)
	second := tr.StartShift(ctx)

	if first.ID != second.ID {
		t.Fatalf("second start must return the existing open entry")
	}

	open := 0
	for _, e := range tr.Entries() {
		if e.Open() {
			open++
		}
	}
	if open != 1 {
		t.Fatalf("expected exactly one open entry, got %d", open)
	}
}

func TestEndShiftWhenIdleIsNoop(t *testing.T) {
	clk := newTestClock()
	tr := newTestTracker(t, clk, store.NewMemoryStore())
	ctx := context.Background()

	if _, ok := tr.EndShift(ctx); ok {
		t.Fatalf("end without an active shift must be a no-op")
	}
	if len(tr.Entries()) != 0 {
		t.Fatalf("collection changed by a no-op end")
	}
}

func TestShiftDurationScenario(t *testing.T) {
	clk := newTestClock()
	tr := newTestTracker(t, clk, store.NewMemoryStore())
	ctx := context.Background()

	started := tr.StartShift(ctx)
	clk.advance(3661000 * time.Millisecond)
	closed, ok := tr.EndShift(ctx)
	if !ok {
		t.Fatalf("expected an entry to close")
	}

	if closed.ID != started.ID {
		t.Fatalf("closed a different entry")
	}
	if got := closed.EndTime - closed.StartTime; got != 3661000 {
		t.Fatalf("duration: got %d want 3661000", got)
	}
	if got := FormatElapsed(time.Duration(closed.EndTime-closed.StartTime) * time.Millisecond); got != "01:01:01" {
		t.Fatalf("formatted duration: got %q", got)
	}
}

func TestElapsedIdleSumsTodaysEntries(t *testing.T) {
	clk := newTestClock()
	st := store.NewMemoryStore()
	ctx := context.Background()

	base := clk.Now().UnixMilli()
	today := core.DateOf(clk.Now())
	seed := []core.TimeEntry{
		{ID: "a", Date: today, StartTime: base - 4_000_000, EndTime: base - 4_000_000 + 1_800_000},
		{ID: "b", Date: today, StartTime: base - 1_000_000, EndTime: base - 1_000_000 + 900_000},
		{ID: "c", Date: core.NewDate(2024, 6, 1), StartTime: base - 90_000_000, EndTime: base - 89_000_000},
	}
	if err := st.Save(ctx, "time_entries", seed); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	tr := newTestTracker(t, clk, st)
	if tr.Active() {
		t.Fatalf("no open entry, tracker must be idle")
	}
	if got := tr.Elapsed(); got != 2700000*time.Millisecond {
		t.Fatalf("idle elapsed: got %v want 45m", got)
	}
}

func TestElapsedActiveAddsRunningSpan(t *testing.T) {
	clk := newTestClock()
	tr := newTestTracker(t, clk, store.NewMemoryStore())
	ctx := context.Background()

	tr.StartShift(ctx)
	clk.advance(10 * time.Minute)
	tr.EndShift(ctx)

	tr.StartShift(ctx)
	clk.advance(5 * time.Minute)

	if got := tr.Elapsed(); got != 15*time.Minute {
		t.Fatalf("active elapsed: got %v want 15m", got)
	}
}

func TestElapsedActiveAcrossMidnight(t *testing.T) {
	clk := newTestClock()
	clk.now = time.Date(2024, 6, 12, 23, 0, 0, 0, time.Local)
	tr := newTestTracker(t, clk, store.NewMemoryStore())
	ctx := context.Background()

	tr.StartShift(ctx)
	clk.advance(2 * time.Hour) // 01:00 the next day

	if got := tr.Elapsed(); got != 2*time.Hour {
		t.Fatalf("active elapsed across midnight: got %v want 2h", got)
	}

	// Ending after midnight still credits the full span to the start day.
	closed, _ := tr.EndShift(ctx)
	if got := closed.EndTime - closed.StartTime; got != (2 * time.Hour).Milliseconds() {
		t.Fatalf("closed duration: got %d", got)
	}
	if closed.Date.String() != "2024-06-12" {
		t.Fatalf("entry must keep its start date, got %s", closed.Date.String())
	}
}

func TestDeleteOpenEntryReturnsToIdle(t *testing.T) {
	clk := newTestClock()
	tr := newTestTracker(t, clk, store.NewMemoryStore())
	ctx := context.Background()

	entry := tr.StartShift(ctx)
	if !tr.Active() {
		t.Fatalf("expected active after start")
	}

	tr.DeleteEntry(ctx, entry.ID)
	if tr.Active() {
		t.Fatalf("expected idle after deleting the open entry")
	}
	if len(tr.Entries()) != 0 {
		t.Fatalf("entry not removed")
	}

	// Unknown ids are a no-op.
	tr.DeleteEntry(ctx, "unknown")
}

func TestClearDayRemovesMatchingEntriesOnly(t *testing.T) {
	clk := newTestClock()
	tr := newTestTracker(t, clk, store.NewMemoryStore())
	ctx := context.Background()

	tr.StartShift(ctx)
	clk.advance(time.Hour)
	tr.EndShift(ctx)

	clk.advance(24 * time.Hour) // next day
	tr.StartShift(ctx)

	today := core.DateOf(clk.Now())
	tr.ClearDay(ctx, today)

	if tr.Active() {
		t.Fatalf("clearing today must close out the open entry")
	}
	remaining := tr.Entries()
	if len(remaining) != 1 {
		t.Fatalf("expected yesterday's entry to survive, got %d entries", len(remaining))
	}
	if core.SameDay(remaining[0].Date.Time, today.Time) {
		t.Fatalf("surviving entry is from the cleared day")
	}
}

func TestDailyHistoryGroupsAndSorts(t *testing.T) {
	clk := newTestClock()
	tr := newTestTracker(t, clk, store.NewMemoryStore())
	ctx := context.Background()

	// Day one: two closed entries.
	tr.StartShift(ctx)
	clk.advance(30 * time.Minute)
	tr.EndShift(ctx)
	clk.advance(time.Hour)
	tr.StartShift(ctx)
	clk.advance(15 * time.Minute)
	tr.EndShift(ctx)

	// Day two: one still-open entry.
	clk.advance(24 * time.Hour)
	tr.StartShift(ctx)
	clk.advance(10 * time.Minute)

	days := tr.DailyHistory()
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}

	// Days sorted date-descending: the open day first.
	if !days[0].Date.After(days[1].Date.Time) {
		t.Fatalf("days must be sorted newest first")
	}
	if days[0].TotalDuration != (10 * time.Minute).Milliseconds() {
		t.Fatalf("open entry must count up to now, got %d", days[0].TotalDuration)
	}
	if days[1].TotalDuration != (45 * time.Minute).Milliseconds() {
		t.Fatalf("closed day total: got %d", days[1].TotalDuration)
	}

	// Entries within a day sorted by start time descending.
	first := days[1].Entries
	if len(first) != 2 || first[0].StartTime < first[1].StartTime {
		t.Fatalf("entries must be newest-start first")
	}
}

func TestOpenShiftResumesAfterRestart(t *testing.T) {
	clk := newTestClock()
	st := store.NewMemoryStore()
	ctx := context.Background()

	tr := newTestTracker(t, clk, st)
	started := tr.StartShift(ctx)
	tr.Close()

	clk.advance(20 * time.Minute)
	resumed := newTestTracker(t, clk, st)

	if !resumed.Active() {
		t.Fatalf("open entry must survive a restart")
	}
	entry, _ := resumed.ActiveEntry()
	if entry.ID != started.ID {
		t.Fatalf("resumed a different entry")
	}
	if got := resumed.Elapsed(); got != 20*time.Minute {
		t.Fatalf("elapsed after resume: got %v want 20m", got)
	}
}

func TestTickRunsWhileActiveAndStops(t *testing.T) {
	clk := newTestClock()
	st := store.NewMemoryStore()
	ctx := context.Background()

	var ticks atomic.Int64
	tr := NewTracker(ctx, Config{
		Key:       "time_entries",
		Store:     st,
		Now:       clk.Now,
		TickEvery: 5 * time.Millisecond,
		OnTick:    func(time.Duration) { ticks.Add(1) },
	})
	defer tr.Close()

	tr.StartShift(ctx)
	time.Sleep(100 * time.Millisecond)
	if ticks.Load() == 0 {
		t.Fatalf("expected ticks while active")
	}

	tr.EndShift(ctx)
	time.Sleep(20 * time.Millisecond)
	settled := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	if ticks.Load() != settled {
		t.Fatalf("ticker must stop when the shift ends")
	}
}
