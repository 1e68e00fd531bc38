package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lidiamcfreitas/budget-api/src/db"
	"github.com/lidiamcfreitas/budget-api/src/ledger"
	"github.com/lidiamcfreitas/budget-api/src/middleware"
)

// GetMonthlyReport aggregates one budget month: per-category totals plus the
// income/expense summary.
func GetMonthlyReport(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		budgetID := chi.URLParam(r, "budget_id")
		monthKey := chi.URLParam(r, "month")

		budget, err := accessor.GetBudget(r.Context(), budgetID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(budget.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}

		start, end, err := ledger.MonthPeriod(monthKey)
		if err != nil {
			writeError(w, r, err)
			return
		}

		txns, err := store.TransactionsForBudgetPeriod(r.Context(), budgetID, start, end)
		if err != nil {
			writeError(w, r, err)
			return
		}
		categories, err := store.CategoriesForBudget(r.Context(), budgetID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		report, err := ledger.BuildMonthlyReport(budget, monthKey, txns, categories)
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Monthly report built - Budget: %s, Month: %s, Transactions: %d", budgetID, monthKey, len(report.Transactions))
		writeJSON(w, http.StatusOK, report)
	}
}
