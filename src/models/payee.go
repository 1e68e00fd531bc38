package models

import "time"

type MerchantType string

const (
	MerchantRetail        MerchantType = "retail"
	MerchantRestaurant    MerchantType = "restaurant"
	MerchantServices      MerchantType = "services"
	MerchantUtility       MerchantType = "utility"
	MerchantEntertainment MerchantType = "entertainment"
	MerchantOther         MerchantType = "other"
)

func ValidMerchantType(t MerchantType) bool {
	switch t {
	case MerchantRetail, MerchantRestaurant, MerchantServices,
		MerchantUtility, MerchantEntertainment, MerchantOther:
		return true
	}
	return false
}

type Payee struct {
	ID                string       `json:"id"`
	UserID            string       `json:"user_id"`
	BudgetID          string       `json:"budget_id"`
	Name              string       `json:"name"`
	DefaultCategoryID *string      `json:"default_category_id"`
	MerchantType      MerchantType `json:"merchant_type"`
	LastUsed          *time.Time   `json:"last_used"`
	Aliases           []string     `json:"aliases"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}
