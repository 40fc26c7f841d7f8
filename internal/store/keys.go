package store

// Snapshot keys, one per ledger variant and one for time entries.
const (
	KeyFreights    = "freights"
	KeyExpenses    = "expenses"
	KeyTimeEntries = "time_entries"
)

// Keys lists every collection the application persists.
var Keys = []string{KeyFreights, KeyExpenses, KeyTimeEntries}
