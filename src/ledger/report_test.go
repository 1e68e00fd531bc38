package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
	"github.com/lidiamcfreitas/budget-api/src/models"
)

func TestBuildMonthlyReport(t *testing.T) {
	budget := &models.Budget{ID: "budget-1", UserID: "user-1", Name: "Household", Currency: "EUR"}
	categories := []models.Category{
		{ID: "cat-rent", Name: "Rent"},
		{ID: "cat-groceries", Name: "Groceries"},
	}
	march := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)

	txns := []models.Transaction{
		txn(-120000, march, strptr("cat-rent")),
		txn(200000, march, nil),
		txn(-9999, april, strptr("cat-groceries")), // outside the month
	}

	t.Run("filters and orders totals", func(t *testing.T) {
		report, err := BuildMonthlyReport(budget, "2024-03", txns, categories)
		require.NoError(t, err)

		assert.Equal(t, "2024-03", report.Month)
		assert.Equal(t, *budget, report.Budget)
		assert.Len(t, report.Transactions, 2)

		require.Len(t, report.CategoryTotals, 3)
		assert.Equal(t, CategoryTotal{CategoryID: "cat-rent", CategoryName: "Rent", Total: -120000}, report.CategoryTotals[0])
		assert.Equal(t, CategoryTotal{CategoryID: "cat-groceries", CategoryName: "Groceries", Total: 0}, report.CategoryTotals[1])
		assert.Equal(t, CategoryTotal{CategoryID: UncategorizedBucket, CategoryName: "Uncategorized", Total: 200000}, report.CategoryTotals[2])

		assert.Equal(t, Summary{TotalIncome: 200000, TotalExpenses: 120000, Net: 80000}, report.Summary)
	})

	t.Run("no uncategorized row without uncategorized activity", func(t *testing.T) {
		report, err := BuildMonthlyReport(budget, "2024-03", []models.Transaction{
			txn(-100, march, strptr("cat-rent")),
		}, categories)
		require.NoError(t, err)

		assert.Len(t, report.CategoryTotals, 2)
	})

	t.Run("malformed month key", func(t *testing.T) {
		_, err := BuildMonthlyReport(budget, "not-a-month", txns, categories)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}
