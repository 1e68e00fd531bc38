package models

import "time"

type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
)

// CrossBudgetTransfer is a paired debit/credit across two budgets' accounts.
// Amount is in the source account's currency, AmountDestination in the
// destination's (converted when the currencies differ).
type CrossBudgetTransfer struct {
	ID                   string         `json:"id"`
	SourceBudgetID       string         `json:"source_budget_id"`
	DestinationBudgetID  string         `json:"destination_budget_id"`
	SourceAccountID      string         `json:"source_account_id"`
	DestinationAccountID string         `json:"destination_account_id"`
	Amount               int64          `json:"amount"`             // cents
	AmountDestination    int64          `json:"amount_destination"` // cents
	Date                 time.Time      `json:"date"`
	Notes                string         `json:"notes"`
	Status               TransferStatus `json:"status"`
	CreatedAt            time.Time      `json:"created_at"`
}
