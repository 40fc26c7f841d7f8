package core

import "time"

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameMonth reports whether two times fall in the same calendar month and year.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// WeekRange returns the Monday and Sunday of the week containing t,
// both at midnight of their day in t's location.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0 .. Saturday=6; weeks here start on Monday.
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	monday := t.AddDate(0, 0, -(wd - 1))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
	sunday := monday.AddDate(0, 0, 6)
	return monday, sunday
}

// SameWeek reports whether two times fall in the same Monday-to-Sunday week.
func SameWeek(a, b time.Time) bool {
	monday, sunday := WeekRange(b)
	day := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, a.Location())
	return !day.Before(monday) && !day.After(sunday)
}

// Matches reports whether date falls inside the filter's window relative
// to now. Unknown filter types and custom filters with a missing bound
// behave as "all".
func (f DateFilter) Matches(date Date, now time.Time) bool {
	switch f.Type {
	case FilterToday:
		return SameDay(date.Time, now)
	case FilterWeek:
		return SameWeek(date.Time, now)
	case FilterMonth:
		return SameMonth(date.Time, now)
	case FilterCustom:
		if f.Start.IsZero() || f.End.IsZero() {
			return true
		}
		day := DateOf(date.Time)
		return !day.Before(f.Start.Time) && !day.After(f.End.Time)
	default:
		return true
	}
}
