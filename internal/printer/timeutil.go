package printer

import (
	"fmt"
	"time"

	"github.com/taskline/taskline/internal/model"
)

// TimeAgo returns a human-readable time relative to now.
// Examples: "5 seconds ago", "2 minutes ago", "3 days ago".
func TimeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		return "in the future"
	}

	switch {
	case diff < time.Minute:
		return plural(int(diff.Seconds()), "second")
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	}
	return plural(int(diff.Hours()/24), "day")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatDate returns the date or "-" when it is not set.
func FormatDate(d *model.Date) string {
	if d == nil || d.IsZero() {
		return "-"
	}
	return d.String()
}

// FormatDateRange returns "start → end" with "?" on the missing side.
func FormatDateRange(start, end *model.Date) string {
	if start == nil && end == nil {
		return "no dates"
	}
	s, e := "?", "?"
	if start != nil {
		s = start.String()
	}
	if end != nil {
		e = end.String()
	}
	return s + " → " + e
}
