package ledger

import (
	"time"

	"freteiro/internal/core"
)

// Summary aggregates a record subset.
type Summary struct {
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

// WeekdayTotal is the best-earning weekday of a record subset.
type WeekdayTotal struct {
	Weekday string  `json:"weekday"`
	Total   float64 `json:"total"`
}

// Summarize computes count and value total over any record subset.
func Summarize(records []core.Record) Summary {
	s := Summary{Count: len(records)}
	for _, r := range records {
		s.TotalValue += r.Value
	}
	return s
}

// BestWeekday groups records by weekday, sums values per group and
// returns the weekday with the maximum sum. Ties resolve to the lowest
// weekday index (Sunday first). Returns nil for an empty subset.
func BestWeekday(records []core.Record) *WeekdayTotal {
	if len(records) == 0 {
		return nil
	}

	var totals [7]float64
	var seen [7]bool
	for _, r := range records {
		wd := r.Date.Weekday()
		totals[wd] += r.Value
		seen[wd] = true
	}

	best := -1
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if !seen[wd] {
			continue
		}
		if best < 0 || totals[wd] > totals[best] {
			best = int(wd)
		}
	}

	return &WeekdayTotal{
		Weekday: time.Weekday(best).String(),
		Total:   totals[best],
	}
}
