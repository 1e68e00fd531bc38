package ledger

import (
	"github.com/lidiamcfreitas/budget-api/src/models"
)

// CategoryTotal is one category's signed period total.
type CategoryTotal struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        int64  `json:"total"`
}

// MonthlyReport aggregates one budget month for the HTTP surface.
type MonthlyReport struct {
	Budget         models.Budget        `json:"budget"`
	Month          string               `json:"month"`
	Transactions   []models.Transaction `json:"transactions"`
	CategoryTotals []CategoryTotal      `json:"category_totals"`
	Summary        Summary              `json:"summary"`
}

// BuildMonthlyReport composes the aggregation for one month. The transaction
// slice may be a superset of the period; filtering happens here. Category
// totals follow the order of categories, with the uncategorized bucket
// appended when it saw any activity.
func BuildMonthlyReport(budget *models.Budget, monthKey string, transactions []models.Transaction, categories []models.Category) (*MonthlyReport, error) {
	start, end, err := MonthPeriod(monthKey)
	if err != nil {
		return nil, err
	}

	agg := Aggregate(transactions, categories, start, end)

	totals := make([]CategoryTotal, 0, len(categories)+1)
	for _, c := range categories {
		totals = append(totals, CategoryTotal{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Total:        agg.PerCategory[c.ID],
		})
	}
	if uncategorized, ok := agg.PerCategory[UncategorizedBucket]; ok {
		totals = append(totals, CategoryTotal{
			CategoryID:   UncategorizedBucket,
			CategoryName: "Uncategorized",
			Total:        uncategorized,
		})
	}

	inPeriod := make([]models.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if InPeriod(t.Date, start, end) {
			inPeriod = append(inPeriod, t)
		}
	}

	return &MonthlyReport{
		Budget:         *budget,
		Month:          monthKey,
		Transactions:   inPeriod,
		CategoryTotals: totals,
		Summary:        agg.Summary,
	}, nil
}
