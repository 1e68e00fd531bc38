package ledger

import "github.com/lidiamcfreitas/budget-api/src/models"

// AssignedAmount returns the amount assigned to the category for the month
// key, 0 when nothing was assigned.
func AssignedAmount(category *models.Category, monthKey string) int64 {
	return category.AssignedAmounts[monthKey]
}

// AvailableBalance derives what is left to spend in the category for the
// month: carried-over cash plus this month's assignment minus this month's
// cash and credit spending.
func AvailableBalance(category *models.Category, monthKey string, spending Spending) (int64, error) {
	if _, err := ParseMonthKey(monthKey); err != nil {
		return 0, err
	}
	return category.CashLeftOver + AssignedAmount(category, monthKey) - spending.Cash - spending.Credit, nil
}

// AmountRemainingToTarget reports how much is still unassigned toward the
// category's savings target this month. Never negative; 0 without a target.
func AmountRemainingToTarget(category *models.Category, monthKey string) int64 {
	if category.Target == nil {
		return 0
	}
	remaining := category.Target.Amount - AssignedAmount(category, monthKey)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SetAssignedAmount records the assignment for the month on the in-memory
// model. Persisting the change is the caller's responsibility.
func SetAssignedAmount(category *models.Category, monthKey string, amount int64) error {
	if _, err := ParseMonthKey(monthKey); err != nil {
		return err
	}
	if category.AssignedAmounts == nil {
		category.AssignedAmounts = make(map[string]int64)
	}
	category.AssignedAmounts[monthKey] = amount
	return nil
}
