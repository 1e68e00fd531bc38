package models

import "time"

type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountCredit   AccountType = "credit"
	AccountCash     AccountType = "cash"
)

func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCredit, AccountCash:
		return true
	}
	return false
}

type Account struct {
	ID        string      `json:"id"`
	BudgetID  string      `json:"budget_id"`
	UserID    string      `json:"user_id"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Balance   int64       `json:"balance"` // cents
	Currency  string      `json:"currency"`
	CreatedAt time.Time   `json:"created_at"`
}
