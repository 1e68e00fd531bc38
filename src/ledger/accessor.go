package ledger

import (
	"context"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
	"github.com/lidiamcfreitas/budget-api/src/models"
)

// EntitySource is the read-only lookup surface the accessor needs. The db
// package implements it; tests use a map-backed fake.
type EntitySource interface {
	BudgetByID(ctx context.Context, id string) (*models.Budget, error)
	BudgetByOwnerNameCurrency(ctx context.Context, userID, name, currency string) (*models.Budget, error)
	CategoryByID(ctx context.Context, id string) (*models.Category, error)
	GroupByID(ctx context.Context, id string) (*models.CategoryGroup, error)
	AccountByID(ctx context.Context, id string) (*models.Account, error)
}

// Accessor fetches entities and enforces existence and ownership checks
// before any mutation or aggregation. It is read-only: errors are surfaced to
// the caller, never retried.
type Accessor struct {
	src EntitySource
}

func NewAccessor(src EntitySource) *Accessor {
	return &Accessor{src: src}
}

// GetBudget returns the budget or a NotFound error.
func (a *Accessor) GetBudget(ctx context.Context, id string) (*models.Budget, error) {
	return a.src.BudgetByID(ctx, id)
}

// FindExistingBudget returns the budget matching (user, name, currency), or
// nil when none exists. Creation stays idempotent under identical triples.
func (a *Accessor) FindExistingBudget(ctx context.Context, userID, name, currency string) (*models.Budget, error) {
	return a.src.BudgetByOwnerNameCurrency(ctx, userID, name, currency)
}

// ValidateCategoryInBudget checks that the category's group belongs to the
// given budget. Violations surface as Validation, not NotFound: the caller
// referenced a category that exists but lives in the wrong budget.
func (a *Accessor) ValidateCategoryInBudget(ctx context.Context, categoryID string, budget *models.Budget) error {
	category, err := a.src.CategoryByID(ctx, categoryID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Validation("category %s does not exist", categoryID)
		}
		return err
	}
	group, err := a.src.GroupByID(ctx, category.GroupID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Validation("category %s has no valid group", categoryID)
		}
		return err
	}
	if group.BudgetID != budget.ID {
		return apperr.Validation("category %s does not belong to budget %s", categoryID, budget.ID)
	}
	return nil
}

// ValidateAccess rejects callers that do not own the resource. The caller is
// already authenticated by the time this runs, so a mismatch is Forbidden.
func (a *Accessor) ValidateAccess(resourceOwnerID, requestingUserID string) error {
	if resourceOwnerID != requestingUserID {
		return apperr.Forbidden("not authorized to access this resource")
	}
	return nil
}

// GetAccount returns the account or a NotFound error.
func (a *Accessor) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	return a.src.AccountByID(ctx, id)
}

// BudgetForAccount resolves the budget owning the account.
func (a *Accessor) BudgetForAccount(ctx context.Context, account *models.Account) (*models.Budget, error) {
	return a.src.BudgetByID(ctx, account.BudgetID)
}
