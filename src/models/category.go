package models

import "time"

// SavingsTarget is an optional goal attached to a category.
type SavingsTarget struct {
	Amount  int64      `json:"amount"` // cents
	Type    string     `json:"type"`
	DueDate *time.Time `json:"due_date"`
}

type Category struct {
	ID              string           `json:"id"`
	GroupID         string           `json:"group_id"`
	Name            string           `json:"name"`
	AssignedAmounts map[string]int64 `json:"assigned_amounts"` // month key -> cents
	CashLeftOver    int64            `json:"cash_left_over"`   // cents
	Target          *SavingsTarget   `json:"target"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type CategoryGroup struct {
	ID        string    `json:"id"`
	BudgetID  string    `json:"budget_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
