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
	"github.com/lidiamcfreitas/budget-api/src/schedule"
)

func CreateRecurringTransaction(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			transactionRequest
			Frequency models.FrequencyType `json:"frequency"`
			Interval  int                  `json:"interval"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		if !models.ValidFrequency(req.Frequency) {
			writeError(w, r, apperr.Validation("invalid frequency"))
			return
		}
		if req.Interval < 1 {
			writeError(w, r, apperr.Validation("interval must be at least 1"))
			return
		}

		txn, err := buildTransaction(r, store, accessor, req.transactionRequest)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// First due date is one period after the start date.
		nextDue, err := schedule.NextOccurrence(txn.Date, req.Frequency, req.Interval, txn.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}

		now := time.Now().UTC()
		txn.ID = docstore.NewID()
		txn.CreatedAt = now
		txn.UpdatedAt = now
		recurring := models.RecurringTransaction{
			Transaction: *txn,
			NextDueDate: nextDue,
			Frequency:   req.Frequency,
			Interval:    req.Interval,
			Active:      true,
		}
		if err := store.Recurring.Create(r.Context(), recurring.ID, recurring); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Recurring transaction created - ID: %s, Account: %s, Next due: %s",
			recurring.ID, recurring.AccountID, nextDue.Format(time.RFC3339))
		writeJSON(w, http.StatusCreated, recurring)
	}
}

// ListRecurringTransactions lists the schedules on one account, or with
// ?due=true every schedule of the caller that is past its next due date.
func ListRecurringTransactions(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("due") == "true" {
			listDueRecurring(store, accessor, w, r)
			return
		}

		accountID := r.URL.Query().Get("account_id")
		if accountID == "" {
			writeError(w, r, apperr.Validation("account_id query parameter is required"))
			return
		}

		account, err := accessor.GetAccount(r.Context(), accountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(account.UserID, middleware.UserID(r)); err != nil {
			writeError(w, r, err)
			return
		}

		recurring, err := store.RecurringForAccount(r.Context(), accountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if recurring == nil {
			recurring = []models.RecurringTransaction{}
		}

		writeJSON(w, http.StatusOK, recurring)
	}
}

func listDueRecurring(store *db.Store, accessor *ledger.Accessor, w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r)

	due, err := store.DueRecurring(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}

	owned := []models.RecurringTransaction{}
	accountOwners := map[string]string{}
	for _, rt := range due {
		owner, ok := accountOwners[rt.AccountID]
		if !ok {
			account, err := accessor.GetAccount(r.Context(), rt.AccountID)
			if err != nil {
				continue
			}
			owner = account.UserID
			accountOwners[rt.AccountID] = owner
		}
		if owner == userID {
			owned = append(owned, rt)
		}
	}

	writeJSON(w, http.StatusOK, owned)
}

func loadOwnedRecurring(r *http.Request, store *db.Store, accessor *ledger.Accessor, id string) (*models.RecurringTransaction, error) {
	recurring, err := store.Recurring.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	account, err := accessor.GetAccount(r.Context(), recurring.AccountID)
	if err != nil {
		return nil, err
	}
	if err := accessor.ValidateAccess(account.UserID, middleware.UserID(r)); err != nil {
		return nil, err
	}
	return recurring, nil
}

func GetRecurringTransaction(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recurring, err := loadOwnedRecurring(r, store, accessor, chi.URLParam(r, "recurring_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, recurring)
	}
}

func UpdateRecurringTransaction(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recurringID := chi.URLParam(r, "recurring_id")

		var req struct {
			Amount    *int64                `json:"amount"`
			Payee     *string               `json:"payee"`
			Notes     *string               `json:"notes"`
			Frequency *models.FrequencyType `json:"frequency"`
			Interval  *int                  `json:"interval"`
			Active    *bool                 `json:"active"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		recurring, err := loadOwnedRecurring(r, store, accessor, recurringID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if req.Amount != nil {
			recurring.Amount = *req.Amount
		}
		if req.Payee != nil {
			recurring.Payee = req.Payee
		}
		if req.Notes != nil {
			recurring.Notes = *req.Notes
		}
		if req.Frequency != nil {
			if !models.ValidFrequency(*req.Frequency) {
				writeError(w, r, apperr.Validation("invalid frequency"))
				return
			}
			recurring.Frequency = *req.Frequency
		}
		if req.Interval != nil {
			if *req.Interval < 1 {
				writeError(w, r, apperr.Validation("interval must be at least 1"))
				return
			}
			recurring.Interval = *req.Interval
		}
		if req.Active != nil {
			recurring.Active = *req.Active
		}
		recurring.UpdatedAt = time.Now().UTC()

		if err := store.Recurring.Update(r.Context(), recurring.ID, *recurring); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Recurring transaction updated - ID: %s", recurringID)
		writeJSON(w, http.StatusOK, recurring)
	}
}

func DeleteRecurringTransaction(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recurringID := chi.URLParam(r, "recurring_id")

		if _, err := loadOwnedRecurring(r, store, accessor, recurringID); err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.Recurring.Delete(r.Context(), recurringID); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Recurring transaction deleted - ID: %s", recurringID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "recurring transaction deleted"})
	}
}

// MaterializeRecurringTransaction posts the next occurrence as a real
// transaction, adjusts the account balance, and advances the due date.
func MaterializeRecurringTransaction(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recurringID := chi.URLParam(r, "recurring_id")

		recurring, err := loadOwnedRecurring(r, store, accessor, recurringID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !recurring.Active {
			writeError(w, r, apperr.Validation("recurring transaction is not active"))
			return
		}

		now := time.Now().UTC()
		txn := recurring.Transaction
		txn.ID = docstore.NewID()
		txn.Date = recurring.NextDueDate
		txn.Cleared = false
		txn.Pending = false
		txn.CreatedAt = now
		txn.UpdatedAt = now

		nextDue, err := schedule.NextOccurrence(txn.Date, recurring.Frequency, recurring.Interval, recurring.NextDueDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		recurring.NextDueDate = nextDue
		recurring.UpdatedAt = now

		err = store.RunTx(r.Context(), func(tx *docstore.Tx) error {
			if _, err := store.AdjustAccountBalanceTx(r.Context(), tx, txn.AccountID, txn.Amount); err != nil {
				return err
			}
			if err := store.Txns.CreateTx(r.Context(), tx, txn.ID, txn); err != nil {
				return err
			}
			return store.Recurring.UpdateTx(r.Context(), tx, recurring.ID, *recurring)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		touchPayee(r, store, txn.Payee)

		log.Printf("INFO: Recurring transaction materialized - ID: %s, Transaction: %s, Next due: %s",
			recurringID, txn.ID, nextDue.Format(time.RFC3339))
		writeJSON(w, http.StatusCreated, map[string]any{
			"transaction": txn,
			"recurring":   recurring,
		})
	}
}
