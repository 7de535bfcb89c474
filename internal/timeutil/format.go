package timeutil

import (
	"fmt"
	"time"
)

// FormatClock formats an instant as its local "HH:MM" wall time.
func FormatClock(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// FormatRelative renders an instant relative to now in coarse human terms.
func FormatRelative(t, now time.Time) string {
	diff := now.Sub(t)
	minutes := int(diff.Minutes())

	switch {
	case minutes < 0:
		return fmt.Sprintf("in %d minutes", -minutes)
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%d minutes ago", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%d hours ago", minutes/60)
	default:
		return fmt.Sprintf("%d days ago", minutes/1440)
	}
}
