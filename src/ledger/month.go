// Package ledger holds the budgeting core: period math, transaction
// aggregation, per-category balance derivation, and the entity accessor that
// guards referential integrity. Everything here is pure computation over
// integer cents; persistence and HTTP stay outside.
package ledger

import (
	"time"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
)

// MonthKeyLayout is the canonical month key, e.g. "2025-03".
const MonthKeyLayout = "2006-01"

// ParseMonthKey validates a year-month key. Malformed keys fail with a
// Validation error; there is no silent defaulting.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(MonthKeyLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid month %q, expected YYYY-MM", key)
	}
	return t, nil
}

// MonthKey renders the canonical key for t's month.
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthKeyLayout)
}

// MonthPeriod returns the half-open interval [start, end) covering the month:
// start is the first instant of the month, end the first instant of the next
// one. December rolls over into January of the following year.
func MonthPeriod(key string) (start, end time.Time, err error) {
	start, err = ParseMonthKey(key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end = start.AddDate(0, 1, 0)
	return start, end, nil
}

// InPeriod reports whether date falls inside [start, end). A transaction dated
// exactly on start is included; one dated exactly on end is not.
func InPeriod(date, start, end time.Time) bool {
	return !date.Before(start) && date.Before(end)
}
