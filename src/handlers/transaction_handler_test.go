package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUtcSecond(t *testing.T) {
	t.Run("drops fractional seconds", func(t *testing.T) {
		in := time.Date(2024, 3, 1, 0, 0, 0, 500_000_000, time.UTC)
		out := utcSecond(in)
		assert.Zero(t, out.Nanosecond())
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), out)
	})

	t.Run("converts to UTC", func(t *testing.T) {
		lisbon := time.FixedZone("WET", 0)
		in := time.Date(2024, 3, 1, 12, 30, 45, 0, lisbon)
		out := utcSecond(in)
		assert.Equal(t, time.UTC, out.Location())
	})

	t.Run("stored form sorts consistently with period bounds", func(t *testing.T) {
		// A timestamp inside the first second of March, stored with its
		// fraction, serializes as "2024-03-01T00:00:00.5Z" and sorts before
		// the period's "2024-03-01T00:00:00Z" lower bound as text. Truncated,
		// it lands exactly on the bound.
		in := time.Date(2024, 3, 1, 0, 0, 0, 500_000_000, time.UTC)
		raw, err := json.Marshal(map[string]time.Time{"date": utcSecond(in)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"date":"2024-03-01T00:00:00Z"}`, string(raw))

		stored := utcSecond(in).Format(time.RFC3339)
		periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
		assert.GreaterOrEqual(t, stored, periodStart)
	})
}
