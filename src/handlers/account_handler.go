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
)

func CreateAccount(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		budgetID := chi.URLParam(r, "budget_id")

		var req struct {
			Name     string             `json:"name"`
			Type     models.AccountType `json:"type"`
			Balance  int64              `json:"balance"`
			Currency string             `json:"currency"`
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

		if req.Name == "" {
			writeError(w, r, apperr.Validation("account name is required"))
			return
		}
		if !models.ValidAccountType(req.Type) {
			writeError(w, r, apperr.Validation("invalid account type"))
			return
		}
		currency := req.Currency
		if currency == "" {
			currency = budget.Currency
		}

		account := models.Account{
			ID:        docstore.NewID(),
			BudgetID:  budgetID,
			UserID:    userID,
			Name:      req.Name,
			Type:      req.Type,
			Balance:   req.Balance,
			Currency:  currency,
			CreatedAt: time.Now().UTC(),
		}
		if err := store.Accounts.Create(r.Context(), account.ID, account); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Account created - Account: %s, Budget: %s", account.ID, budgetID)
		writeJSON(w, http.StatusCreated, account)
	}
}

func ListAccounts(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
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

		accounts, err := store.AccountsForBudget(r.Context(), budgetID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if accounts == nil {
			accounts = []models.Account{}
		}

		writeJSON(w, http.StatusOK, accounts)
	}
}

func GetAccount(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		accountID := chi.URLParam(r, "account_id")

		account, err := accessor.GetAccount(r.Context(), accountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(account.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, account)
	}
}

func UpdateAccount(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		accountID := chi.URLParam(r, "account_id")

		var req struct {
			Name *string             `json:"name"`
			Type *models.AccountType `json:"type"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		account, err := accessor.GetAccount(r.Context(), accountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(account.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}

		if req.Name != nil {
			if *req.Name == "" {
				writeError(w, r, apperr.Validation("account name is required"))
				return
			}
			account.Name = *req.Name
		}
		if req.Type != nil {
			if !models.ValidAccountType(*req.Type) {
				writeError(w, r, apperr.Validation("invalid account type"))
				return
			}
			account.Type = *req.Type
		}

		if err := store.UpdateAccount(r.Context(), account); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Account updated - Account: %s, User: %s", accountID, userID)
		writeJSON(w, http.StatusOK, account)
	}
}

func DeleteAccount(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		accountID := chi.URLParam(r, "account_id")

		account, err := accessor.GetAccount(r.Context(), accountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(account.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}

		txns, err := store.TransactionsForAccount(r.Context(), accountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, t := range txns {
			if err := store.Txns.Delete(r.Context(), t.ID); err != nil {
				writeError(w, r, err)
				return
			}
		}
		recurring, err := store.RecurringForAccount(r.Context(), accountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, rt := range recurring {
			if err := store.Recurring.Delete(r.Context(), rt.ID); err != nil {
				writeError(w, r, err)
				return
			}
		}

		if err := store.DeleteAccount(r.Context(), accountID); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Account deleted - Account: %s, User: %s", accountID, userID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
	}
}
