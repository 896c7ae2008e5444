package human

import (
	"fmt"
	"time"
)

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %v ago", unit)
	}
	return fmt.Sprintf("%v %vs ago", n, unit)
}

// Ago describes how long before now t happened. Times older than two weeks, and times in the
// future, are shown as a date.
func Ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0:
		return t.Format("02 Jan 2006")
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 48*time.Hour:
		return "yesterday"
	case d < 14*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	default:
		return t.Format("02 Jan 2006")
	}
}
