package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
	"github.com/lidiamcfreitas/budget-api/src/models"
)

func TestNextOccurrence(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("monthly", func(t *testing.T) {
		next, err := NextOccurrence(start, models.FrequencyMonthly, 1, start)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("monthly over year end", func(t *testing.T) {
		december := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
		next, err := NextOccurrence(start, models.FrequencyMonthly, 1, december)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("biweekly", func(t *testing.T) {
		next, err := NextOccurrence(start, models.FrequencyWeekly, 2, start)
		require.NoError(t, err)
		assert.Equal(t, start.AddDate(0, 0, 14), next)
	})

	t.Run("daily", func(t *testing.T) {
		next, err := NextOccurrence(start, models.FrequencyDaily, 1, start)
		require.NoError(t, err)
		assert.Equal(t, start.AddDate(0, 0, 1), next)
	})

	t.Run("yearly", func(t *testing.T) {
		next, err := NextOccurrence(start, models.FrequencyYearly, 1, start)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("after between occurrences picks the next one", func(t *testing.T) {
		after := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		next, err := NextOccurrence(start, models.FrequencyMonthly, 1, after)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("zero interval defaults to one", func(t *testing.T) {
		next, err := NextOccurrence(start, models.FrequencyMonthly, 0, start)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), next)
	})

	t.Run("fractional seconds are dropped from occurrences", func(t *testing.T) {
		fractional := time.Date(2024, 1, 15, 0, 0, 0, 500_000_000, time.UTC)
		next, err := NextOccurrence(fractional, models.FrequencyMonthly, 1, fractional)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), next)
		assert.Zero(t, next.Nanosecond())
	})

	t.Run("negative interval is a validation error", func(t *testing.T) {
		_, err := NextOccurrence(start, models.FrequencyMonthly, -1, start)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("invalid frequency is a validation error", func(t *testing.T) {
		_, err := NextOccurrence(start, models.FrequencyType("fortnightly"), 1, start)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}
