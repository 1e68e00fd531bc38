package handlers

import (
	"log"
	"math"
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

// convertAmount translates cents between account currencies using the stored
// rate table for the source currency. Same currency moves one-to-one.
func convertAmount(r *http.Request, store *db.Store, amount int64, from, to string) (int64, error) {
	if from == to {
		return amount, nil
	}
	rate, err := store.RateByBase(r.Context(), from)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return 0, apperr.Validation("no exchange rates stored for %s", from)
		}
		return 0, err
	}
	factor, ok := rate.Rates[to]
	if !ok {
		return 0, apperr.Validation("no exchange rate from %s to %s", from, to)
	}
	return int64(math.Round(float64(amount) * factor)), nil
}

// CreateTransfer moves money between accounts of two different budgets owned
// by the caller. Both balance updates and the transfer record commit in one
// store transaction.
func CreateTransfer(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req struct {
			SourceAccountID      string    `json:"source_account_id"`
			DestinationAccountID string    `json:"destination_account_id"`
			Amount               int64     `json:"amount"`
			Date                 time.Time `json:"date"`
			Notes                string    `json:"notes"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		if req.Amount <= 0 {
			writeError(w, r, apperr.Validation("transfer amount must be positive"))
			return
		}

		source, err := accessor.GetAccount(r.Context(), req.SourceAccountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(source.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}
		dest, err := accessor.GetAccount(r.Context(), req.DestinationAccountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(dest.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}
		if source.BudgetID == dest.BudgetID {
			writeError(w, r, apperr.Validation("accounts must belong to different budgets"))
			return
		}

		amountDest, err := convertAmount(r, store, req.Amount, source.Currency, dest.Currency)
		if err != nil {
			writeError(w, r, err)
			return
		}

		date := req.Date
		if date.IsZero() {
			date = time.Now().UTC()
		}
		transfer := models.CrossBudgetTransfer{
			ID:                   docstore.NewID(),
			SourceBudgetID:       source.BudgetID,
			DestinationBudgetID:  dest.BudgetID,
			SourceAccountID:      source.ID,
			DestinationAccountID: dest.ID,
			Amount:               req.Amount,
			AmountDestination:    amountDest,
			Date:                 utcSecond(date),
			Notes:                req.Notes,
			Status:               models.TransferCompleted,
			CreatedAt:            time.Now().UTC(),
		}

		err = store.RunTx(r.Context(), func(tx *docstore.Tx) error {
			if _, err := store.AdjustAccountBalanceTx(r.Context(), tx, source.ID, -req.Amount); err != nil {
				return err
			}
			if _, err := store.AdjustAccountBalanceTx(r.Context(), tx, dest.ID, amountDest); err != nil {
				return err
			}
			return store.Transfers.CreateTx(r.Context(), tx, transfer.ID, transfer)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Transfer completed - Transfer: %s, %d %s -> %d %s",
			transfer.ID, req.Amount, source.Currency, amountDest, dest.Currency)
		writeJSON(w, http.StatusCreated, transfer)
	}
}

func GetTransfer(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		transferID := chi.URLParam(r, "transfer_id")

		transfer, err := store.Transfers.Get(r.Context(), transferID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		budget, err := accessor.GetBudget(r.Context(), transfer.SourceBudgetID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(budget.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, transfer)
	}
}

// ListTransfers returns transfers where the budget is either side.
func ListTransfers(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
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

		transfers, err := store.TransfersForBudget(r.Context(), budgetID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if transfers == nil {
			transfers = []models.CrossBudgetTransfer{}
		}

		writeJSON(w, http.StatusOK, transfers)
	}
}
