package timex

import (
	"fmt"
	"time"
)

// Ago renders the age of t relative to now the way post cards show it:
// "Just now", "5m", "3h", "2d", and a plain date after 30 days.
func Ago(t, now time.Time) string {
	minutes := int(now.Sub(t).Minutes())
	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case minutes < 1440:
		return fmt.Sprintf("%dh", minutes/60)
	case minutes < 43200:
		return fmt.Sprintf("%dd", minutes/1440)
	default:
		return ShortDate(t)
	}
}

// ShortDate formats t as a local calendar date.
func ShortDate(t time.Time) string {
	return t.Local().Format("1/2/2006")
}

// MonthYear formats t as "January 2006".
func MonthYear(t time.Time) string {
	return t.Local().Format("January 2006")
}
