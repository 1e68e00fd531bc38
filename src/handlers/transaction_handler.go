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

type transactionRequest struct {
	AccountID  string    `json:"account_id"`
	Amount     int64     `json:"amount"`
	Date       time.Time `json:"date"`
	Payee      *string   `json:"payee"`
	CategoryID *string   `json:"category_id"`
	Cleared    bool      `json:"cleared"`
	Pending    bool      `json:"pending"`
	Notes      string    `json:"notes"`
}

// utcSecond normalizes a timestamp for storage: UTC, whole seconds. Stored
// dates are range-filtered as RFC 3339 text, and text order only matches time
// order when every value carries the same precision.
func utcSecond(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// buildTransaction validates the request against the owning account and
// budget, and fills in the denormalized account and category names.
func buildTransaction(r *http.Request, store *db.Store, accessor *ledger.Accessor, req transactionRequest) (*models.Transaction, error) {
	account, err := accessor.GetAccount(r.Context(), req.AccountID)
	if err != nil {
		return nil, err
	}
	if err := accessor.ValidateAccess(account.UserID, middleware.UserID(r)); err != nil {
		return nil, err
	}
	budget, err := accessor.BudgetForAccount(r.Context(), account)
	if err != nil {
		return nil, err
	}
	if req.Date.IsZero() {
		return nil, apperr.Validation("transaction date is required")
	}

	txn := models.Transaction{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Date:        utcSecond(req.Date),
		Payee:       req.Payee,
		CategoryID:  req.CategoryID,
		Cleared:     req.Cleared,
		Pending:     req.Pending,
		Notes:       req.Notes,
		AccountName: account.Name,
	}
	if req.CategoryID != nil {
		if err := accessor.ValidateCategoryInBudget(r.Context(), *req.CategoryID, budget); err != nil {
			return nil, err
		}
		category, err := store.CategoryByID(r.Context(), *req.CategoryID)
		if err != nil {
			return nil, err
		}
		txn.CategoryName = &category.Name
	}
	return &txn, nil
}

// touchPayee bumps LastUsed on the payee matching the transaction's payee
// name. Best effort: a miss or store error never fails the transaction.
func touchPayee(r *http.Request, store *db.Store, payeeName *string) {
	if payeeName == nil || *payeeName == "" {
		return
	}
	payees, err := store.PayeesForUser(r.Context(), middleware.UserID(r))
	if err != nil {
		log.Printf("ERROR: Failed to load payees for last-used update: %v", err)
		return
	}
	for _, p := range payees {
		if p.Name == *payeeName {
			now := time.Now().UTC()
			p.LastUsed = &now
			p.UpdatedAt = now
			if err := store.Payees.Update(r.Context(), p.ID, p); err != nil {
				log.Printf("ERROR: Failed to update payee last-used - Payee: %s: %v", p.ID, err)
			}
			return
		}
	}
}

func CreateTransaction(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transactionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		txn, err := buildTransaction(r, store, accessor, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		now := time.Now().UTC()
		txn.ID = docstore.NewID()
		txn.CreatedAt = now
		txn.UpdatedAt = now

		// Record and balance move commit or fail together.
		err = store.RunTx(r.Context(), func(tx *docstore.Tx) error {
			if _, err := store.AdjustAccountBalanceTx(r.Context(), tx, txn.AccountID, txn.Amount); err != nil {
				return err
			}
			return store.Txns.CreateTx(r.Context(), tx, txn.ID, *txn)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		touchPayee(r, store, txn.Payee)

		log.Printf("INFO: Transaction created - Transaction: %s, Account: %s, Amount: %d", txn.ID, txn.AccountID, txn.Amount)
		writeJSON(w, http.StatusCreated, txn)
	}
}

func ListTransactions(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		txns, err := store.TransactionsForAccount(r.Context(), accountID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if txns == nil {
			txns = []models.Transaction{}
		}

		writeJSON(w, http.StatusOK, txns)
	}
}

// loadOwnedTransaction resolves a transaction through its account and checks
// ownership.
func loadOwnedTransaction(r *http.Request, store *db.Store, accessor *ledger.Accessor, transactionID string) (*models.Transaction, *models.Account, error) {
	txn, err := store.Txns.Get(r.Context(), transactionID)
	if err != nil {
		return nil, nil, err
	}
	account, err := accessor.GetAccount(r.Context(), txn.AccountID)
	if err != nil {
		return nil, nil, err
	}
	if err := accessor.ValidateAccess(account.UserID, middleware.UserID(r)); err != nil {
		return nil, nil, err
	}
	return txn, account, nil
}

func GetTransaction(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID := chi.URLParam(r, "transaction_id")

		txn, _, err := loadOwnedTransaction(r, store, accessor, transactionID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, txn)
	}
}

func UpdateTransaction(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID := chi.URLParam(r, "transaction_id")

		var req struct {
			Amount     *int64     `json:"amount"`
			Date       *time.Time `json:"date"`
			Payee      *string    `json:"payee"`
			CategoryID *string    `json:"category_id"`
			Cleared    *bool      `json:"cleared"`
			Pending    *bool      `json:"pending"`
			Notes      *string    `json:"notes"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		txn, account, err := loadOwnedTransaction(r, store, accessor, transactionID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		delta := int64(0)
		if req.Amount != nil {
			delta = *req.Amount - txn.Amount
			txn.Amount = *req.Amount
		}
		if req.Date != nil {
			txn.Date = utcSecond(*req.Date)
		}
		if req.Payee != nil {
			txn.Payee = req.Payee
		}
		if req.CategoryID != nil {
			budget, err := accessor.BudgetForAccount(r.Context(), account)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if err := accessor.ValidateCategoryInBudget(r.Context(), *req.CategoryID, budget); err != nil {
				writeError(w, r, err)
				return
			}
			category, err := store.CategoryByID(r.Context(), *req.CategoryID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			txn.CategoryID = req.CategoryID
			txn.CategoryName = &category.Name
		}
		if req.Cleared != nil {
			txn.Cleared = *req.Cleared
		}
		if req.Pending != nil {
			txn.Pending = *req.Pending
		}
		if req.Notes != nil {
			txn.Notes = *req.Notes
		}
		txn.UpdatedAt = time.Now().UTC()

		err = store.RunTx(r.Context(), func(tx *docstore.Tx) error {
			if delta != 0 {
				if _, err := store.AdjustAccountBalanceTx(r.Context(), tx, txn.AccountID, delta); err != nil {
					return err
				}
			}
			return store.Txns.UpdateTx(r.Context(), tx, txn.ID, *txn)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Transaction updated - Transaction: %s", transactionID)
		writeJSON(w, http.StatusOK, txn)
	}
}

func DeleteTransaction(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		transactionID := chi.URLParam(r, "transaction_id")

		txn, _, err := loadOwnedTransaction(r, store, accessor, transactionID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// Deleting the record hands the money back to the account.
		err = store.RunTx(r.Context(), func(tx *docstore.Tx) error {
			if _, err := store.AdjustAccountBalanceTx(r.Context(), tx, txn.AccountID, -txn.Amount); err != nil {
				return err
			}
			return store.Txns.DeleteTx(r.Context(), tx, txn.ID)
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Transaction deleted - Transaction: %s", transactionID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "transaction deleted"})
	}
}
