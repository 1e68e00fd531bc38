package db

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lidiamcfreitas/budget-api/src/models"
)

// seedCache initializes the global cache and waits until a seeded value is
// visible to Get. Ristretto applies Sets asynchronously.
func seedCache(t *testing.T, seed func()) {
	t.Helper()
	InitCache()
	seed()
	Cache.Wait()
}

func TestBudgetByIDReturnsCopies(t *testing.T) {
	seedCache(t, func() {
		SetBudgetCache("budget:b1", models.Budget{ID: "b1", UserID: "u1", Name: "Household", Currency: "EUR"})
	})
	store := &Store{}

	first, err := store.BudgetByID(context.Background(), "b1")
	require.NoError(t, err)
	second, err := store.BudgetByID(context.Background(), "b1")
	require.NoError(t, err)
	require.NotSame(t, first, second)

	// Mutating one caller's copy must not bleed into another's.
	first.Name = "Renamed"
	first.Currency = "USD"
	assert.Equal(t, "Household", second.Name)
	assert.Equal(t, "EUR", second.Currency)

	third, err := store.BudgetByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, "Household", third.Name)
}

func TestAccountByIDReturnsCopies(t *testing.T) {
	seedCache(t, func() {
		SetAccountCache("account:a1", models.Account{ID: "a1", Name: "Checking", Balance: 5000, Currency: "EUR"})
	})
	store := &Store{}

	first, err := store.AccountByID(context.Background(), "a1")
	require.NoError(t, err)
	first.Balance = -1
	first.Name = "Poisoned"

	second, err := store.AccountByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), second.Balance)
	assert.Equal(t, "Checking", second.Name)
}

func TestAccountByIDConcurrentReads(t *testing.T) {
	seedCache(t, func() {
		SetAccountCache("account:a1", models.Account{ID: "a1", Name: "Checking", Balance: 5000})
	})
	store := &Store{}

	// Every goroutine mutates its own copy; run under -race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				a, err := store.AccountByID(context.Background(), "a1")
				if err != nil {
					t.Error(err)
					return
				}
				a.Name = "mine"
				a.Balance++
			}
		}()
	}
	wg.Wait()

	a, err := store.AccountByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Checking", a.Name)
	assert.Equal(t, int64(5000), a.Balance)
}

func TestRateByBaseClonesRatesMap(t *testing.T) {
	seedCache(t, func() {
		SetRateCache("rate:EUR", models.ExchangeRate{
			BaseCurrency: "EUR",
			Rates:        map[string]float64{"USD": 1.08, "GBP": 0.85},
		})
	})
	store := &Store{}

	first, err := store.RateByBase(context.Background(), "EUR")
	require.NoError(t, err)
	first.Rates["USD"] = 999
	delete(first.Rates, "GBP")

	second, err := store.RateByBase(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, 1.08, second.Rates["USD"])
	assert.Equal(t, 0.85, second.Rates["GBP"])
}
