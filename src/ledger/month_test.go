package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
)

func TestParseMonthKey(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		got, err := ParseMonthKey("2024-03")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("malformed keys are Validation errors", func(t *testing.T) {
		for _, key := range []string{"", "2024", "2024-13", "03-2024", "2024-3", "march"} {
			_, err := ParseMonthKey(key)
			require.Error(t, err, key)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), key)
		}
	})
}

func TestMonthPeriod(t *testing.T) {
	t.Run("mid year", func(t *testing.T) {
		start, end, err := MonthPeriod("2024-03")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("december rolls into january", func(t *testing.T) {
		start, end, err := MonthPeriod("2024-12")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
	})
}

func TestInPeriod(t *testing.T) {
	start, end, err := MonthPeriod("2024-03")
	require.NoError(t, err)

	t.Run("first day inclusive", func(t *testing.T) {
		assert.True(t, InPeriod(start, start, end))
	})

	t.Run("next month first day exclusive", func(t *testing.T) {
		assert.False(t, InPeriod(end, start, end))
	})

	t.Run("last instant of the month counts", func(t *testing.T) {
		assert.True(t, InPeriod(end.Add(-time.Nanosecond), start, end))
	})

	t.Run("before the period", func(t *testing.T) {
		assert.False(t, InPeriod(start.Add(-time.Nanosecond), start, end))
	})
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2024-03", MonthKey(time.Date(2024, 3, 17, 15, 4, 5, 0, time.UTC)))
	assert.Equal(t, "2024-12", MonthKey(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)))
}
