package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidiamcfreitas/budget-api/src/models"
)

func strptr(s string) *string { return &s }

func txn(amount int64, date time.Time, categoryID *string) models.Transaction {
	return models.Transaction{
		ID:         "txn-" + date.Format(time.RFC3339),
		AccountID:  "acc-1",
		Amount:     amount,
		Date:       date,
		CategoryID: categoryID,
	}
}

func TestAggregate(t *testing.T) {
	start, end, err := MonthPeriod("2024-03")
	require.NoError(t, err)

	groceries := models.Category{ID: "cat-groceries", Name: "Groceries"}
	rent := models.Category{ID: "cat-rent", Name: "Rent"}
	categories := []models.Category{groceries, rent}

	t.Run("net equals income minus expenses and raw signed sum", func(t *testing.T) {
		txns := []models.Transaction{
			txn(250000, start, nil),                                       // salary, uncategorized
			txn(-4500, start.AddDate(0, 0, 3), strptr("cat-groceries")),   // groceries
			txn(-120000, start.AddDate(0, 0, 1), strptr("cat-rent")),      // rent
			txn(-1500, start.AddDate(0, 0, 10), strptr("cat-groceries")),  // groceries again
			txn(3000, start.AddDate(0, 0, 15), strptr("cat-groceries")),   // refund
		}

		agg := Aggregate(txns, categories, start, end)

		var raw int64
		for _, tx := range txns {
			raw += tx.Amount
		}
		assert.Equal(t, agg.Summary.TotalIncome-agg.Summary.TotalExpenses, agg.Summary.Net)
		assert.Equal(t, raw, agg.Summary.Net)
		assert.Equal(t, int64(253000), agg.Summary.TotalIncome)
		assert.Equal(t, int64(126000), agg.Summary.TotalExpenses)

		assert.Equal(t, int64(-3000), agg.PerCategory["cat-groceries"])
		assert.Equal(t, int64(-120000), agg.PerCategory["cat-rent"])
		assert.Equal(t, int64(250000), agg.PerCategory[UncategorizedBucket])
	})

	t.Run("provided categories appear at zero", func(t *testing.T) {
		agg := Aggregate(nil, categories, start, end)

		assert.Equal(t, int64(0), agg.PerCategory["cat-groceries"])
		assert.Equal(t, int64(0), agg.PerCategory["cat-rent"])
		assert.Equal(t, Summary{}, agg.Summary)
	})

	t.Run("uncategorized bucket only appears when hit", func(t *testing.T) {
		agg := Aggregate([]models.Transaction{
			txn(-100, start, strptr("cat-rent")),
		}, categories, start, end)

		_, ok := agg.PerCategory[UncategorizedBucket]
		assert.False(t, ok)
	})

	t.Run("period boundaries are half open", func(t *testing.T) {
		agg := Aggregate([]models.Transaction{
			txn(-100, start, strptr("cat-rent")),                     // first day, in
			txn(-200, end, strptr("cat-rent")),                       // next month first day, out
			txn(-400, end.Add(-time.Second), strptr("cat-rent")),     // last moment, in
			txn(-800, start.Add(-time.Second), strptr("cat-rent")),   // previous month, out
		}, categories, start, end)

		assert.Equal(t, int64(-500), agg.PerCategory["cat-rent"])
		assert.Equal(t, int64(500), agg.Summary.TotalExpenses)
	})

	t.Run("empty set", func(t *testing.T) {
		agg := Aggregate(nil, nil, start, end)
		assert.Empty(t, agg.PerCategory)
		assert.Equal(t, Summary{}, agg.Summary)
	})
}

func TestSpendingByCategory(t *testing.T) {
	start, end, err := MonthPeriod("2024-03")
	require.NoError(t, err)

	accountTypes := map[string]models.AccountType{
		"acc-cash":   models.AccountChecking,
		"acc-credit": models.AccountCredit,
	}

	txns := []models.Transaction{
		{ID: "t1", AccountID: "acc-cash", Amount: -3000, Date: start, CategoryID: strptr("cat-1")},
		{ID: "t2", AccountID: "acc-credit", Amount: -2000, Date: start.AddDate(0, 0, 5), CategoryID: strptr("cat-1")},
		{ID: "t3", AccountID: "acc-cash", Amount: 5000, Date: start, CategoryID: strptr("cat-1")}, // inflow, ignored
		{ID: "t4", AccountID: "acc-cash", Amount: -900, Date: start, CategoryID: nil},
		{ID: "t5", AccountID: "acc-cash", Amount: -700, Date: end, CategoryID: strptr("cat-1")}, // out of period
	}

	spending := SpendingByCategory(txns, accountTypes, start, end)

	assert.Equal(t, Spending{Cash: 3000, Credit: 2000}, spending["cat-1"])
	assert.Equal(t, Spending{Cash: 900}, spending[UncategorizedBucket])
}
