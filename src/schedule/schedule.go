// Package schedule computes occurrence dates for recurring transactions.
package schedule

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
	"github.com/lidiamcfreitas/budget-api/src/models"
)

func rruleFrequency(f models.FrequencyType) (rrule.Frequency, error) {
	switch f {
	case models.FrequencyDaily:
		return rrule.DAILY, nil
	case models.FrequencyWeekly:
		return rrule.WEEKLY, nil
	case models.FrequencyMonthly:
		return rrule.MONTHLY, nil
	case models.FrequencyYearly:
		return rrule.YEARLY, nil
	default:
		return 0, apperr.Validation("invalid frequency %q", f)
	}
}

// NextOccurrence returns the first occurrence strictly after the given date
// for the frequency/interval pair, anchored at dtstart. Interval defaults
// to 1 when unset; a negative interval is a Validation error.
func NextOccurrence(dtstart time.Time, frequency models.FrequencyType, interval int, after time.Time) (time.Time, error) {
	freq, err := rruleFrequency(frequency)
	if err != nil {
		return time.Time{}, err
	}
	if interval < 0 {
		return time.Time{}, apperr.Validation("interval must be positive, got %d", interval)
	}
	if interval == 0 {
		interval = 1
	}

	// Whole seconds only: due dates are range-filtered as RFC 3339 text, and
	// a fractional dtstart would leak fractions into every occurrence.
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  dtstart.UTC().Truncate(time.Second),
	})
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.KindValidation, err, "invalid recurrence rule")
	}

	next := rule.After(after.UTC(), false)
	if next.IsZero() {
		return time.Time{}, apperr.Validation("no next occurrence after %s", after.Format(time.RFC3339))
	}
	return next, nil
}
