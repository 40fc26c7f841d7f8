package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	FilterAll    DateFilterType = "all"
	FilterToday  DateFilterType = "today"
	FilterWeek   DateFilterType = "week"
	FilterMonth  DateFilterType = "month"
	FilterCustom DateFilterType = "custom"
)

type (
	// DateFilterType selects the date window used by ledger queries.
	DateFilterType string

	// Date is a calendar date (year-month-day, no time-of-day, no timezone).
	// It marshals as "2006-01-02".
	Date struct {
		time.Time
	}

	// Record is a dated monetary fact. Freights and expenses share the shape;
	// which collection a record lives in carries its income/cost semantics,
	// so Value is always a non-negative magnitude.
	Record struct {
		ID          string  `json:"id"`
		Label       string  `json:"label"`
		Description string  `json:"description,omitempty"`
		Date        Date    `json:"date"`
		Value       float64 `json:"value"`
		CreatedAt   int64   `json:"createdAt"` // epoch millis, insertion order only
	}

	// TimeEntry is one shift interval. EndTime == 0 marks the open entry.
	TimeEntry struct {
		ID        string `json:"id"`
		Date      Date   `json:"date"` // day the shift started on
		StartTime int64  `json:"startTime"`
		EndTime   int64  `json:"endTime,omitempty"`
	}

	// DateFilter is a query window: a filter type plus the custom bounds.
	// Zero bounds make a custom filter behave as "all".
	DateFilter struct {
		Type  DateFilterType
		Start Date
		End   Date
	}
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidValue = errors.New("invalid value")
	ErrEmptyLabel   = errors.New("empty label")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in the local location.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())}
}

// ParseDate parses a "2006-01-02" string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String renders the date as "2006-01-02". Zero dates render empty.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the fields a caller must supply before adding a record.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if r.Date.IsZero() {
		return ErrInvalidDate
	}
	if r.Value < 0 {
		return ErrInvalidValue
	}
	return nil
}

// Open reports whether the entry is still running.
func (e TimeEntry) Open() bool {
	return e.EndTime == 0
}

// Duration returns the entry span in milliseconds, using now for an open
// entry. A closed entry ignores now.
func (e TimeEntry) Duration(now int64) int64 {
	end := e.EndTime
	if end == 0 {
		end = now
	}
	return end - e.StartTime
}
