package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lidiamcfreitas/budget-api/src/db"
	"github.com/lidiamcfreitas/budget-api/src/handlers"
	"github.com/lidiamcfreitas/budget-api/src/ledger"
	"github.com/lidiamcfreitas/budget-api/src/middleware"
)

func NewRouter(store *db.Store, isDemo bool) *chi.Mux {
	accessor := ledger.NewAccessor(store)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.DemoModeMiddleware(isDemo))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handlers.Login(store))
		r.Post("/register", handlers.Register(store))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware).Group(func(r chi.Router) {
			// User
			r.Get("/user/{user_id}", handlers.GetUser(store))
			r.Put("/user", handlers.UpdateUser(store))
			r.Post("/user/change-password", handlers.ChangePassword(store))
			r.Delete("/user", handlers.DeleteUser(store))

			// Budget
			r.Post("/budgets", handlers.CreateBudget(store, accessor))
			r.Get("/budgets", handlers.ListBudgets(store))
			r.Get("/budgets/{budget_id}", handlers.GetBudget(store, accessor))
			r.Put("/budgets/{budget_id}", handlers.UpdateBudget(store, accessor))
			r.Delete("/budgets/{budget_id}", handlers.DeleteBudget(store, accessor))
			r.Get("/budgets/{budget_id}/report/{month}", handlers.GetMonthlyReport(store, accessor))
			r.Get("/budgets/{budget_id}/transfers", handlers.ListTransfers(store, accessor))

			// Account
			r.Post("/budgets/{budget_id}/accounts", handlers.CreateAccount(store, accessor))
			r.Get("/budgets/{budget_id}/accounts", handlers.ListAccounts(store, accessor))
			r.Get("/accounts/{account_id}", handlers.GetAccount(store, accessor))
			r.Put("/accounts/{account_id}", handlers.UpdateAccount(store, accessor))
			r.Delete("/accounts/{account_id}", handlers.DeleteAccount(store, accessor))

			// Category groups
			r.Post("/budgets/{budget_id}/category-groups", handlers.CreateCategoryGroup(store, accessor))
			r.Get("/budgets/{budget_id}/category-groups", handlers.ListCategoryGroups(store, accessor))
			r.Get("/category-groups/{group_id}", handlers.GetCategoryGroup(store, accessor))
			r.Put("/category-groups/{group_id}", handlers.UpdateCategoryGroup(store, accessor))
			r.Delete("/category-groups/{group_id}", handlers.DeleteCategoryGroup(store, accessor))
			r.Post("/category-groups/{group_id}/categories/{category_id}", handlers.MoveCategoryToGroup(store, accessor))

			// Categories
			r.Post("/categories", handlers.CreateCategory(store, accessor))
			r.Get("/categories/{category_id}", handlers.GetCategory(store, accessor))
			r.Put("/categories/{category_id}", handlers.UpdateCategory(store, accessor))
			r.Delete("/categories/{category_id}", handlers.DeleteCategory(store, accessor))
			r.Put("/categories/{category_id}/assigned/{month}", handlers.SetAssignedAmount(store, accessor))
			r.Get("/categories/{category_id}/available", handlers.GetAvailableBalance(store, accessor))

			// Transactions
			r.Post("/transactions", handlers.CreateTransaction(store, accessor))
			r.Get("/transactions", handlers.ListTransactions(store, accessor))
			r.Get("/transactions/{transaction_id}", handlers.GetTransaction(store, accessor))
			r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(store, accessor))
			r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(store, accessor))

			// Recurring transactions
			r.Post("/recurring-transactions", handlers.CreateRecurringTransaction(store, accessor))
			r.Get("/recurring-transactions", handlers.ListRecurringTransactions(store, accessor))
			r.Get("/recurring-transactions/{recurring_id}", handlers.GetRecurringTransaction(store, accessor))
			r.Put("/recurring-transactions/{recurring_id}", handlers.UpdateRecurringTransaction(store, accessor))
			r.Delete("/recurring-transactions/{recurring_id}", handlers.DeleteRecurringTransaction(store, accessor))
			r.Post("/recurring-transactions/{recurring_id}/materialize", handlers.MaterializeRecurringTransaction(store, accessor))

			// Payees
			r.Post("/payees", handlers.CreatePayee(store, accessor))
			r.Get("/payees", handlers.ListPayees(store))
			r.Get("/payees/search", handlers.SearchPayees(store))
			r.Get("/payees/{payee_id}", handlers.GetPayee(store, accessor))
			r.Put("/payees/{payee_id}", handlers.UpdatePayee(store, accessor))
			r.Delete("/payees/{payee_id}", handlers.DeletePayee(store, accessor))
			r.Post("/payees/{payee_id}/aliases", handlers.AddPayeeAliases(store, accessor))

			// Transfers
			r.Post("/transfers", handlers.CreateTransfer(store, accessor))
			r.Get("/transfers/{transfer_id}", handlers.GetTransfer(store, accessor))
		})

		// Super Admin Routes
		r.With(middleware.JWTAuthMiddleware, middleware.SuperAdminMiddleware).Group(func(r chi.Router) {
			r.Put("/admin/exchange-rates", handlers.PutExchangeRates(store))
			r.Get("/admin/exchange-rates/{base}", handlers.GetExchangeRates(store))
			r.Post("/admin/backfill", handlers.RunBackfill(store))
			r.Post("/admin/cache/clear/{cache_name}", handlers.ClearCache())
		})
	})

	return r
}
