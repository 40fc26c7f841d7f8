package shift

import (
	"fmt"
	"time"
)

// FormatElapsed renders a duration as zero-padded HH:MM:SS, truncating
// sub-second remainders. Hours are not capped at 24.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
