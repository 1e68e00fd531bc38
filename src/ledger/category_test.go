package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
	"github.com/lidiamcfreitas/budget-api/src/models"
)

func TestAvailableBalance(t *testing.T) {
	t.Run("worked example", func(t *testing.T) {
		category := &models.Category{
			ID:              "cat-1",
			CashLeftOver:    1000,
			AssignedAmounts: map[string]int64{"2024-03": 500},
		}

		got, err := AvailableBalance(category, "2024-03", Spending{Cash: 200, Credit: 100})
		require.NoError(t, err)
		assert.Equal(t, int64(1200), got)
	})

	t.Run("month with no assignment", func(t *testing.T) {
		category := &models.Category{ID: "cat-1", CashLeftOver: 1000}

		got, err := AvailableBalance(category, "2024-04", Spending{})
		require.NoError(t, err)
		assert.Equal(t, int64(1000), got)
	})

	t.Run("malformed month key", func(t *testing.T) {
		_, err := AvailableBalance(&models.Category{}, "bad-key", Spending{})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestAmountRemainingToTarget(t *testing.T) {
	t.Run("partially funded", func(t *testing.T) {
		category := &models.Category{
			Target:          &models.SavingsTarget{Amount: 5000},
			AssignedAmounts: map[string]int64{"2024-03": 3000},
		}
		assert.Equal(t, int64(2000), AmountRemainingToTarget(category, "2024-03"))
	})

	t.Run("overfunded clamps to zero", func(t *testing.T) {
		category := &models.Category{
			Target:          &models.SavingsTarget{Amount: 5000},
			AssignedAmounts: map[string]int64{"2024-03": 6000},
		}
		assert.Equal(t, int64(0), AmountRemainingToTarget(category, "2024-03"))
	})

	t.Run("no target means nothing remaining", func(t *testing.T) {
		category := &models.Category{
			AssignedAmounts: map[string]int64{"2024-03": 6000},
		}
		assert.Equal(t, int64(0), AmountRemainingToTarget(category, "2024-03"))
	})
}

func TestSetAssignedAmount(t *testing.T) {
	t.Run("initializes the map", func(t *testing.T) {
		category := &models.Category{ID: "cat-1"}

		require.NoError(t, SetAssignedAmount(category, "2024-03", 2500))
		assert.Equal(t, int64(2500), AssignedAmount(category, "2024-03"))
	})

	t.Run("overwrites an existing month", func(t *testing.T) {
		category := &models.Category{AssignedAmounts: map[string]int64{"2024-03": 100}}

		require.NoError(t, SetAssignedAmount(category, "2024-03", 900))
		assert.Equal(t, int64(900), category.AssignedAmounts["2024-03"])
	})

	t.Run("rejects malformed month key", func(t *testing.T) {
		err := SetAssignedAmount(&models.Category{}, "2024/03", 100)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}
