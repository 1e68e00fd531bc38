package models

import "time"

type Transaction struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	Amount     int64     `json:"amount"` // signed cents: positive inflow, negative outflow
	Date       time.Time `json:"date"`
	Payee      *string   `json:"payee"`
	CategoryID *string   `json:"category_id"`
	Cleared    bool      `json:"cleared"`
	Pending    bool      `json:"pending"`
	Notes      string    `json:"notes"`
	// Denormalized for display, maintained on write and by the backfill job.
	AccountName  string    `json:"account_name"`
	CategoryName *string   `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type FrequencyType string

const (
	FrequencyDaily   FrequencyType = "daily"
	FrequencyWeekly  FrequencyType = "weekly"
	FrequencyMonthly FrequencyType = "monthly"
	FrequencyYearly  FrequencyType = "yearly"
)

func ValidFrequency(f FrequencyType) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringTransaction is a template that periodically materializes into a
// concrete Transaction.
type RecurringTransaction struct {
	Transaction
	NextDueDate time.Time     `json:"next_due_date"`
	Frequency   FrequencyType `json:"frequency"`
	Interval    int           `json:"interval"`
	Active      bool          `json:"active"`
}
