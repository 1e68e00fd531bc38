package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
	"github.com/lidiamcfreitas/budget-api/src/db"
	"github.com/lidiamcfreitas/budget-api/src/docstore"
	"github.com/lidiamcfreitas/budget-api/src/ledger"
	"github.com/lidiamcfreitas/budget-api/src/middleware"
	"github.com/lidiamcfreitas/budget-api/src/models"
	"github.com/lidiamcfreitas/budget-api/src/util"
)

// CreateBudget is idempotent on (user, name, currency): re-posting the same
// budget returns the existing one instead of a duplicate.
func CreateBudget(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req struct {
			Name     string `json:"name"`
			Currency string `json:"currency"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		if req.Name == "" {
			writeError(w, r, apperr.Validation("budget name is required"))
			return
		}
		if !util.ValidCurrency(req.Currency) {
			log.Printf("ERROR: Unsupported currency on budget create - Currency: %s, User: %s", req.Currency, userID)
			writeError(w, r, apperr.Validation("unsupported currency code"))
			return
		}

		existing, err := accessor.FindExistingBudget(r.Context(), userID, req.Name, req.Currency)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if existing != nil {
			log.Printf("INFO: Budget create matched existing - Budget: %s, User: %s", existing.ID, userID)
			writeJSON(w, http.StatusOK, existing)
			return
		}

		budget := models.Budget{
			ID:        docstore.NewID(),
			UserID:    userID,
			Name:      req.Name,
			Currency:  req.Currency,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.Budgets.Create(r.Context(), budget.ID, budget); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Budget created - Budget: %s, User: %s", budget.ID, userID)
		writeJSON(w, http.StatusCreated, budget)
	}
}

func GetBudget(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		budgetID := chi.URLParam(r, "budget_id")

		budget, err := accessor.GetBudget(r.Context(), budgetID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(budget.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, budget)
	}
}

func ListBudgets(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		budgets, err := store.BudgetsForUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if budgets == nil {
			budgets = []models.Budget{}
		}

		writeJSON(w, http.StatusOK, budgets)
	}
}

func UpdateBudget(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		budgetID := chi.URLParam(r, "budget_id")

		var req struct {
			Name *string `json:"name"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		budget, err := accessor.GetBudget(r.Context(), budgetID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(budget.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}

		if req.Name != nil {
			if *req.Name == "" {
				writeError(w, r, apperr.Validation("budget name is required"))
				return
			}
			budget.Name = *req.Name
		}

		if err := store.UpdateBudget(r.Context(), budget); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Budget updated - Budget: %s, User: %s", budgetID, userID)
		writeJSON(w, http.StatusOK, budget)
	}
}

func DeleteBudget(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		budgetID := chi.URLParam(r, "budget_id")

		budget, err := accessor.GetBudget(r.Context(), budgetID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(budget.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}

		if err := deleteBudgetCascade(r, store, budgetID); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Budget deleted - Budget: %s, User: %s", budgetID, userID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "budget deleted"})
	}
}

// deleteBudgetCascade removes a budget with its groups, categories, accounts,
// and per-account transactions and recurring schedules.
func deleteBudgetCascade(r *http.Request, store *db.Store, budgetID string) error {
	ctx := r.Context()

	accounts, err := store.AccountsForBudget(ctx, budgetID)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		txns, err := store.TransactionsForAccount(ctx, a.ID)
		if err != nil {
			return err
		}
		for _, t := range txns {
			if err := store.Txns.Delete(ctx, t.ID); err != nil {
				return err
			}
		}
		recurring, err := store.RecurringForAccount(ctx, a.ID)
		if err != nil {
			return err
		}
		for _, rt := range recurring {
			if err := store.Recurring.Delete(ctx, rt.ID); err != nil {
				return err
			}
		}
		if err := store.DeleteAccount(ctx, a.ID); err != nil {
			return err
		}
	}

	groups, err := store.GroupsForBudget(ctx, budgetID)
	if err != nil {
		return err
	}
	for _, g := range groups {
		categories, err := store.CategoriesForGroup(ctx, g.ID)
		if err != nil {
			return err
		}
		for _, c := range categories {
			if err := store.Categs.Delete(ctx, c.ID); err != nil {
				return err
			}
		}
		if err := store.Groups.Delete(ctx, g.ID); err != nil {
			return err
		}
	}

	return store.DeleteBudget(ctx, budgetID)
}
