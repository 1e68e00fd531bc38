package ledger

import (
	"time"

	"github.com/lidiamcfreitas/budget-api/src/models"
)

// UncategorizedBucket collects transactions with no category. They still count
// toward the income/expense/net totals.
const UncategorizedBucket = "uncategorized"

// Summary holds the overall totals for a period. TotalExpenses is the
// absolute value of the outflow sum, so Net == TotalIncome - TotalExpenses.
type Summary struct {
	TotalIncome   int64 `json:"total_income"`
	TotalExpenses int64 `json:"total_expenses"`
	Net           int64 `json:"net"`
}

// Aggregation is the result of summing a transaction set over a period.
type Aggregation struct {
	PerCategory map[string]int64 `json:"per_category"`
	Summary     Summary          `json:"summary"`
}

// Aggregate filters transactions to the half-open period [start, end), sums
// signed amounts per category, and computes the overall totals. Every category
// in categories appears in the result, at 0 when nothing matched. All
// arithmetic is integer cents; decimal rendering is the caller's problem.
func Aggregate(transactions []models.Transaction, categories []models.Category, start, end time.Time) Aggregation {
	perCategory := make(map[string]int64, len(categories)+1)
	for _, c := range categories {
		perCategory[c.ID] = 0
	}

	var summary Summary
	for _, t := range transactions {
		if !InPeriod(t.Date, start, end) {
			continue
		}
		bucket := UncategorizedBucket
		if t.CategoryID != nil && *t.CategoryID != "" {
			bucket = *t.CategoryID
		}
		perCategory[bucket] += t.Amount

		if t.Amount > 0 {
			summary.TotalIncome += t.Amount
		} else {
			summary.TotalExpenses += -t.Amount
		}
		summary.Net += t.Amount
	}

	return Aggregation{PerCategory: perCategory, Summary: summary}
}

// Spending is the period outflow of a category, split by the owning account's
// type. Credit covers credit accounts; Cash covers everything else.
type Spending struct {
	Cash   int64
	Credit int64
}

// SpendingByCategory computes per-category outflow for [start, end), split by
// account type. Inflows do not reduce spending. accountTypes maps account id
// to its kind; transactions on unknown accounts count as cash.
func SpendingByCategory(transactions []models.Transaction, accountTypes map[string]models.AccountType, start, end time.Time) map[string]Spending {
	spending := make(map[string]Spending)
	for _, t := range transactions {
		if t.Amount >= 0 || !InPeriod(t.Date, start, end) {
			continue
		}
		bucket := UncategorizedBucket
		if t.CategoryID != nil && *t.CategoryID != "" {
			bucket = *t.CategoryID
		}
		s := spending[bucket]
		if accountTypes[t.AccountID] == models.AccountCredit {
			s.Credit += -t.Amount
		} else {
			s.Cash += -t.Amount
		}
		spending[bucket] = s
	}
	return spending
}
