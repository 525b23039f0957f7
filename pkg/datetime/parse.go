// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/salemate/franchise-performance/pkg/constants"
)

const (
	// DateTimeLayout is the month key format, e.g. "2025-03".
	DateTimeLayout = constants.DateTimeLayout
)

// MonthKey returns the UTC calendar month of t as "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

// StartOfMonth returns midnight UTC on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKeys returns count consecutive month keys starting at start's month.
// A negative count walks backwards and returns the keys oldest-first.
func MonthKeys(start time.Time, count int) []string {
	first := StartOfMonth(start)
	if count < 0 {
		count = -count
		first = first.AddDate(0, -(count - 1), 0)
	}
	keys := make([]string, 0, count)
	for i := 0; i < count; i++ {
		keys = append(keys, MonthKey(first.AddDate(0, i, 0)))
	}
	return keys
}

// ApproxMonthsBetween measures the distance from earlier to later in 30-day
// months. The result is negative when earlier is after later.
func ApproxMonthsBetween(earlier, later time.Time) float64 {
	return later.Sub(earlier).Hours() / (24 * constants.DaysPerMonth)
}
