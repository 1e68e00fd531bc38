package db

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lidiamcfreitas/budget-api/src/docstore"
	"github.com/lidiamcfreitas/budget-api/src/models"
)

// Collection names. One flat collection per entity kind.
const (
	ColUsers     = "users"
	ColBudgets   = "budgets"
	ColGroups    = "category_groups"
	ColCategs    = "categories"
	ColAccounts  = "accounts"
	ColTxns      = "transactions"
	ColRecurring = "recurring_transactions"
	ColPayees    = "payees"
	ColTransfers = "cross_budget_transfers"
	ColRates     = "exchange_rates"
	ColBackups   = "backups"
)

// Store bundles the typed collections and the cross-entity queries the
// handlers need. It is constructed once in main and passed down explicitly.
type Store struct {
	Docs *docstore.Store

	Users     docstore.Collection[models.User]
	Budgets   docstore.Collection[models.Budget]
	Groups    docstore.Collection[models.CategoryGroup]
	Categs    docstore.Collection[models.Category]
	Accounts  docstore.Collection[models.Account]
	Txns      docstore.Collection[models.Transaction]
	Recurring docstore.Collection[models.RecurringTransaction]
	Payees    docstore.Collection[models.Payee]
	Transfers docstore.Collection[models.CrossBudgetTransfer]
	Rates     docstore.Collection[models.ExchangeRate]
}

func NewStore(pool *pgxpool.Pool) *Store {
	docs := docstore.New(pool)
	return &Store{
		Docs:      docs,
		Users:     docstore.NewCollection[models.User](docs, ColUsers),
		Budgets:   docstore.NewCollection[models.Budget](docs, ColBudgets),
		Groups:    docstore.NewCollection[models.CategoryGroup](docs, ColGroups),
		Categs:    docstore.NewCollection[models.Category](docs, ColCategs),
		Accounts:  docstore.NewCollection[models.Account](docs, ColAccounts),
		Txns:      docstore.NewCollection[models.Transaction](docs, ColTxns),
		Recurring: docstore.NewCollection[models.RecurringTransaction](docs, ColRecurring),
		Payees:    docstore.NewCollection[models.Payee](docs, ColPayees),
		Transfers: docstore.NewCollection[models.CrossBudgetTransfer](docs, ColTransfers),
		Rates:     docstore.NewCollection[models.ExchangeRate](docs, ColRates),
	}
}

func (s *Store) RunTx(ctx context.Context, fn func(tx *docstore.Tx) error) error {
	return s.Docs.RunTx(ctx, fn)
}

// User lookups

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.Users.Get(ctx, id)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := s.Users.Query(ctx, docstore.Eq("username", username))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := s.Users.Query(ctx, docstore.Eq("email", email))
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// Budget lookups

// BudgetByID reads through the cache. The cache holds values, never shared
// pointers: every caller gets its own copy to mutate, and a failed update
// can't leave a half-mutated struct behind.
func (s *Store) BudgetByID(ctx context.Context, id string) (*models.Budget, error) {
	cacheKey := "budget:" + id
	if cached, found := Cache.Get(cacheKey); found {
		if b, ok := cached.(models.Budget); ok {
			return &b, nil
		}
	}
	b, err := s.Budgets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	SetBudgetCache(cacheKey, *b)
	return b, nil
}

// BudgetByOwnerNameCurrency returns the budget matching all three fields, or
// nil when none exists. Used to keep budget creation idempotent.
func (s *Store) BudgetByOwnerNameCurrency(ctx context.Context, userID, name, currency string) (*models.Budget, error) {
	budgets, err := s.Budgets.Query(ctx,
		docstore.Eq("user_id", userID),
		docstore.Eq("name", name),
		docstore.Eq("currency", currency),
	)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, nil
	}
	return &budgets[0], nil
}

func (s *Store) BudgetsForUser(ctx context.Context, userID string) ([]models.Budget, error) {
	return s.Budgets.Query(ctx, docstore.Eq("user_id", userID))
}

func (s *Store) UpdateBudget(ctx context.Context, b *models.Budget) error {
	if err := s.Budgets.Update(ctx, b.ID, *b); err != nil {
		return err
	}
	DelBudgetCache("budget:" + b.ID)
	return nil
}

func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	if err := s.Budgets.Delete(ctx, id); err != nil {
		return err
	}
	DelBudgetCache("budget:" + id)
	return nil
}

// Group and category lookups

func (s *Store) GroupByID(ctx context.Context, id string) (*models.CategoryGroup, error) {
	return s.Groups.Get(ctx, id)
}

func (s *Store) GroupsForBudget(ctx context.Context, budgetID string) ([]models.CategoryGroup, error) {
	return s.Groups.Query(ctx, docstore.Eq("budget_id", budgetID))
}

func (s *Store) CategoryByID(ctx context.Context, id string) (*models.Category, error) {
	return s.Categs.Get(ctx, id)
}

func (s *Store) CategoriesForGroup(ctx context.Context, groupID string) ([]models.Category, error) {
	return s.Categs.Query(ctx, docstore.Eq("group_id", groupID))
}

// CategoriesForBudget walks the budget's groups and collects their categories.
func (s *Store) CategoriesForBudget(ctx context.Context, budgetID string) ([]models.Category, error) {
	groups, err := s.GroupsForBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	var categories []models.Category
	for _, g := range groups {
		cats, err := s.CategoriesForGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cats...)
	}
	return categories, nil
}

// Account lookups

// AccountByID reads through the cache. Cached by value, same as BudgetByID.
func (s *Store) AccountByID(ctx context.Context, id string) (*models.Account, error) {
	cacheKey := "account:" + id
	if cached, found := Cache.Get(cacheKey); found {
		if a, ok := cached.(models.Account); ok {
			return &a, nil
		}
	}
	a, err := s.Accounts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	SetAccountCache(cacheKey, *a)
	return a, nil
}

func (s *Store) AccountsForBudget(ctx context.Context, budgetID string) ([]models.Account, error) {
	return s.Accounts.Query(ctx, docstore.Eq("budget_id", budgetID))
}

func (s *Store) UpdateAccount(ctx context.Context, a *models.Account) error {
	if err := s.Accounts.Update(ctx, a.ID, *a); err != nil {
		return err
	}
	DelAccountCache("account:" + a.ID)
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	if err := s.Accounts.Delete(ctx, id); err != nil {
		return err
	}
	DelAccountCache("account:" + id)
	return nil
}

// AdjustAccountBalanceTx applies a signed delta to an account balance inside
// tx. The read locks the account row, so paired adjustments commit atomically
// or not at all.
func (s *Store) AdjustAccountBalanceTx(ctx context.Context, tx *docstore.Tx, accountID string, delta int64) (*models.Account, error) {
	account, err := s.Accounts.GetTx(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	account.Balance += delta
	if err := s.Accounts.UpdateTx(ctx, tx, accountID, *account); err != nil {
		return nil, err
	}
	// Invalidate only once the transaction commits. Dropping the cache entry
	// earlier would let a reader repopulate it from the old row while the
	// transaction is still in flight, or churn it for a rolled-back write.
	tx.OnCommit(func() { DelAccountCache("account:" + accountID) })
	return account, nil
}

// Transaction lookups

func (s *Store) TransactionsForAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	return s.Txns.Query(ctx, docstore.Eq("account_id", accountID))
}

// TransactionsForBudgetPeriod merges per-account date-range queries for every
// account in the budget. The [start, end) bound is re-checked by the
// aggregator, so the store filter only has to be a superset.
func (s *Store) TransactionsForBudgetPeriod(ctx context.Context, budgetID string, start, end time.Time) ([]models.Transaction, error) {
	accounts, err := s.AccountsForBudget(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	var txns []models.Transaction
	for _, a := range accounts {
		rows, err := s.Txns.Query(ctx,
			docstore.Eq("account_id", a.ID),
			docstore.Gte("date", start.UTC().Format(time.RFC3339)),
			docstore.Lt("date", end.UTC().Format(time.RFC3339)),
		)
		if err != nil {
			return nil, err
		}
		txns = append(txns, rows...)
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
	return txns, nil
}

// Recurring transactions

func (s *Store) RecurringForAccount(ctx context.Context, accountID string) ([]models.RecurringTransaction, error) {
	return s.Recurring.Query(ctx, docstore.Eq("account_id", accountID))
}

// DueRecurring returns active recurring transactions whose next due date is
// not after now.
func (s *Store) DueRecurring(ctx context.Context, now time.Time) ([]models.RecurringTransaction, error) {
	due, err := s.Recurring.Query(ctx,
		docstore.Eq("active", "true"),
		docstore.Lte("next_due_date", now.UTC().Format(time.RFC3339)),
	)
	if err != nil {
		return nil, err
	}
	return due, nil
}

// Payees

func (s *Store) PayeesForUser(ctx context.Context, userID string) ([]models.Payee, error) {
	return s.Payees.Query(ctx, docstore.Eq("user_id", userID))
}

func (s *Store) PayeesByMerchantType(ctx context.Context, userID string, t models.MerchantType) ([]models.Payee, error) {
	return s.Payees.Query(ctx,
		docstore.Eq("user_id", userID),
		docstore.Eq("merchant_type", string(t)),
	)
}

// SearchPayees matches payees by name prefix (a store range scan) or by exact
// alias (filtered here; the store only supports equality and range on fields).
func (s *Store) SearchPayees(ctx context.Context, userID, query string) ([]models.Payee, error) {
	byName, err := s.Payees.Query(ctx,
		docstore.Eq("user_id", userID),
		docstore.Gte("name", query),
		docstore.Lt("name", query+"\uf8ff"),
	)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(byName))
	for _, p := range byName {
		seen[p.ID] = struct{}{}
	}

	all, err := s.PayeesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	results := byName
	for _, p := range all {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		for _, alias := range p.Aliases {
			if strings.EqualFold(alias, query) {
				results = append(results, p)
				break
			}
		}
	}
	return results, nil
}

// Transfers

func (s *Store) TransfersForBudget(ctx context.Context, budgetID string) ([]models.CrossBudgetTransfer, error) {
	outgoing, err := s.Transfers.Query(ctx, docstore.Eq("source_budget_id", budgetID))
	if err != nil {
		return nil, err
	}
	incoming, err := s.Transfers.Query(ctx, docstore.Eq("destination_budget_id", budgetID))
	if err != nil {
		return nil, err
	}
	return append(outgoing, incoming...), nil
}

// Exchange rates

// RateByBase reads through the cache. The Rates map is cloned on every hit
// so callers never share the cached map.
func (s *Store) RateByBase(ctx context.Context, base string) (*models.ExchangeRate, error) {
	cacheKey := "rate:" + base
	if cached, found := Cache.Get(cacheKey); found {
		if r, ok := cached.(models.ExchangeRate); ok {
			r.Rates = cloneRates(r.Rates)
			return &r, nil
		}
	}
	r, err := s.Rates.Get(ctx, base)
	if err != nil {
		return nil, err
	}
	stored := *r
	stored.Rates = cloneRates(r.Rates)
	SetRateCache(cacheKey, stored)
	return r, nil
}

func cloneRates(rates map[string]float64) map[string]float64 {
	clone := make(map[string]float64, len(rates))
	for k, v := range rates {
		clone[k] = v
	}
	return clone
}

func (s *Store) PutRates(ctx context.Context, rate *models.ExchangeRate) error {
	if err := s.Rates.Set(ctx, rate.BaseCurrency, *rate); err != nil {
		return err
	}
	DelRateCache("rate:" + rate.BaseCurrency)
	return nil
}
