package models

import "time"

// ExchangeRate holds the conversion rates for one base currency. Rates are a
// presentation/conversion concern only; ledger arithmetic never touches them.
type ExchangeRate struct {
	BaseCurrency string             `json:"base_currency"`
	Rates        map[string]float64 `json:"rates"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
