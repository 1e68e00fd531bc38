package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
	"github.com/lidiamcfreitas/budget-api/src/models"
)

// fakeSource is a map-backed EntitySource for accessor tests.
type fakeSource struct {
	budgets    map[string]*models.Budget
	categories map[string]*models.Category
	groups     map[string]*models.CategoryGroup
	accounts   map[string]*models.Account
}

func (f *fakeSource) BudgetByID(_ context.Context, id string) (*models.Budget, error) {
	if b, ok := f.budgets[id]; ok {
		return b, nil
	}
	return nil, apperr.NotFound("budget %s not found", id)
}

func (f *fakeSource) BudgetByOwnerNameCurrency(_ context.Context, userID, name, currency string) (*models.Budget, error) {
	for _, b := range f.budgets {
		if b.UserID == userID && b.Name == name && b.Currency == currency {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) CategoryByID(_ context.Context, id string) (*models.Category, error) {
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return nil, apperr.NotFound("category %s not found", id)
}

func (f *fakeSource) GroupByID(_ context.Context, id string) (*models.CategoryGroup, error) {
	if g, ok := f.groups[id]; ok {
		return g, nil
	}
	return nil, apperr.NotFound("category group %s not found", id)
}

func (f *fakeSource) AccountByID(_ context.Context, id string) (*models.Account, error) {
	if a, ok := f.accounts[id]; ok {
		return a, nil
	}
	return nil, apperr.NotFound("account %s not found", id)
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		budgets: map[string]*models.Budget{
			"budget-1": {ID: "budget-1", UserID: "user-1", Name: "Household", Currency: "EUR"},
			"budget-2": {ID: "budget-2", UserID: "user-1", Name: "Travel", Currency: "EUR"},
		},
		groups: map[string]*models.CategoryGroup{
			"group-1": {ID: "group-1", BudgetID: "budget-1", Name: "Essentials"},
			"group-2": {ID: "group-2", BudgetID: "budget-2", Name: "Trips"},
		},
		categories: map[string]*models.Category{
			"cat-1": {ID: "cat-1", GroupID: "group-1", Name: "Groceries"},
			"cat-2": {ID: "cat-2", GroupID: "group-2", Name: "Flights"},
		},
		accounts: map[string]*models.Account{
			"acc-1": {ID: "acc-1", BudgetID: "budget-1", UserID: "user-1", Name: "Checking"},
		},
	}
}

func TestAccessorValidateCategoryInBudget(t *testing.T) {
	accessor := NewAccessor(newFakeSource())
	ctx := context.Background()
	budget := &models.Budget{ID: "budget-1", UserID: "user-1"}

	t.Run("category in budget passes", func(t *testing.T) {
		assert.NoError(t, accessor.ValidateCategoryInBudget(ctx, "cat-1", budget))
	})

	t.Run("category in another budget is a validation error", func(t *testing.T) {
		err := accessor.ValidateCategoryInBudget(ctx, "cat-2", budget)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("unknown category is a validation error", func(t *testing.T) {
		err := accessor.ValidateCategoryInBudget(ctx, "cat-missing", budget)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestAccessorValidateAccess(t *testing.T) {
	accessor := NewAccessor(newFakeSource())

	t.Run("owner passes", func(t *testing.T) {
		assert.NoError(t, accessor.ValidateAccess("user-1", "user-1"))
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		err := accessor.ValidateAccess("user-1", "user-2")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	})
}

func TestAccessorFindExistingBudget(t *testing.T) {
	accessor := NewAccessor(newFakeSource())
	ctx := context.Background()

	t.Run("matching triple returns the budget", func(t *testing.T) {
		got, err := accessor.FindExistingBudget(ctx, "user-1", "Household", "EUR")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "budget-1", got.ID)
	})

	t.Run("different currency returns nil", func(t *testing.T) {
		got, err := accessor.FindExistingBudget(ctx, "user-1", "Household", "USD")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestAccessorGetBudget(t *testing.T) {
	accessor := NewAccessor(newFakeSource())
	ctx := context.Background()

	t.Run("existing budget", func(t *testing.T) {
		got, err := accessor.GetBudget(ctx, "budget-1")
		require.NoError(t, err)
		assert.Equal(t, "Household", got.Name)
	})

	t.Run("missing budget is not found", func(t *testing.T) {
		_, err := accessor.GetBudget(ctx, "budget-missing")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestAccessorBudgetForAccount(t *testing.T) {
	accessor := NewAccessor(newFakeSource())
	ctx := context.Background()

	account, err := accessor.GetAccount(ctx, "acc-1")
	require.NoError(t, err)

	budget, err := accessor.BudgetForAccount(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, "budget-1", budget.ID)
}
