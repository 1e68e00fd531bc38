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

func CreatePayee(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req struct {
			BudgetID          string              `json:"budget_id"`
			Name              string              `json:"name"`
			DefaultCategoryID *string             `json:"default_category_id"`
			MerchantType      models.MerchantType `json:"merchant_type"`
			Aliases           []string            `json:"aliases"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		if req.Name == "" {
			writeError(w, r, apperr.Validation("payee name is required"))
			return
		}
		if req.MerchantType != "" && !models.ValidMerchantType(req.MerchantType) {
			writeError(w, r, apperr.Validation("invalid merchant type"))
			return
		}

		budget, err := accessor.GetBudget(r.Context(), req.BudgetID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := accessor.ValidateAccess(budget.UserID, userID); err != nil {
			writeError(w, r, err)
			return
		}
		if req.DefaultCategoryID != nil {
			if err := accessor.ValidateCategoryInBudget(r.Context(), *req.DefaultCategoryID, budget); err != nil {
				writeError(w, r, err)
				return
			}
		}

		now := time.Now().UTC()
		payee := models.Payee{
			ID:                docstore.NewID(),
			UserID:            userID,
			BudgetID:          req.BudgetID,
			Name:              req.Name,
			DefaultCategoryID: req.DefaultCategoryID,
			MerchantType:      req.MerchantType,
			Aliases:           req.Aliases,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if payee.Aliases == nil {
			payee.Aliases = []string{}
		}
		if err := store.Payees.Create(r.Context(), payee.ID, payee); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Payee created - Payee: %s, User: %s", payee.ID, userID)
		writeJSON(w, http.StatusCreated, payee)
	}
}

// ListPayees returns the caller's payees, optionally filtered by merchant
// type.
func ListPayees(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var payees []models.Payee
		var err error
		if t := r.URL.Query().Get("merchant_type"); t != "" {
			if !models.ValidMerchantType(models.MerchantType(t)) {
				writeError(w, r, apperr.Validation("invalid merchant type"))
				return
			}
			payees, err = store.PayeesByMerchantType(r.Context(), userID, models.MerchantType(t))
		} else {
			payees, err = store.PayeesForUser(r.Context(), userID)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		if payees == nil {
			payees = []models.Payee{}
		}

		writeJSON(w, http.StatusOK, payees)
	}
}

// SearchPayees matches by name prefix or alias.
func SearchPayees(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		query := r.URL.Query().Get("q")
		if query == "" {
			writeError(w, r, apperr.Validation("q query parameter is required"))
			return
		}

		payees, err := store.SearchPayees(r.Context(), userID, query)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if payees == nil {
			payees = []models.Payee{}
		}

		writeJSON(w, http.StatusOK, payees)
	}
}

func loadOwnedPayee(r *http.Request, store *db.Store, accessor *ledger.Accessor, payeeID string) (*models.Payee, error) {
	payee, err := store.Payees.Get(r.Context(), payeeID)
	if err != nil {
		return nil, err
	}
	if err := accessor.ValidateAccess(payee.UserID, middleware.UserID(r)); err != nil {
		return nil, err
	}
	return payee, nil
}

func GetPayee(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payee, err := loadOwnedPayee(r, store, accessor, chi.URLParam(r, "payee_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, payee)
	}
}

func UpdatePayee(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payeeID := chi.URLParam(r, "payee_id")

		var req struct {
			Name              *string              `json:"name"`
			DefaultCategoryID *string              `json:"default_category_id"`
			MerchantType      *models.MerchantType `json:"merchant_type"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		payee, err := loadOwnedPayee(r, store, accessor, payeeID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if req.Name != nil {
			if *req.Name == "" {
				writeError(w, r, apperr.Validation("payee name is required"))
				return
			}
			payee.Name = *req.Name
		}
		if req.DefaultCategoryID != nil {
			budget, err := accessor.GetBudget(r.Context(), payee.BudgetID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if err := accessor.ValidateCategoryInBudget(r.Context(), *req.DefaultCategoryID, budget); err != nil {
				writeError(w, r, err)
				return
			}
			payee.DefaultCategoryID = req.DefaultCategoryID
		}
		if req.MerchantType != nil {
			if !models.ValidMerchantType(*req.MerchantType) {
				writeError(w, r, apperr.Validation("invalid merchant type"))
				return
			}
			payee.MerchantType = *req.MerchantType
		}
		payee.UpdatedAt = time.Now().UTC()

		if err := store.Payees.Update(r.Context(), payee.ID, *payee); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Payee updated - Payee: %s", payeeID)
		writeJSON(w, http.StatusOK, payee)
	}
}

func DeletePayee(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payeeID := chi.URLParam(r, "payee_id")

		if _, err := loadOwnedPayee(r, store, accessor, payeeID); err != nil {
			writeError(w, r, err)
			return
		}
		if err := store.Payees.Delete(r.Context(), payeeID); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Payee deleted - Payee: %s", payeeID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "payee deleted"})
	}
}

// AddPayeeAliases appends new aliases, skipping any the payee already has.
func AddPayeeAliases(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payeeID := chi.URLParam(r, "payee_id")

		var req struct {
			Aliases []string `json:"aliases"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if len(req.Aliases) == 0 {
			writeError(w, r, apperr.Validation("aliases must not be empty"))
			return
		}

		payee, err := loadOwnedPayee(r, store, accessor, payeeID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		existing := make(map[string]bool, len(payee.Aliases))
		for _, a := range payee.Aliases {
			existing[a] = true
		}
		for _, a := range req.Aliases {
			if a != "" && !existing[a] {
				payee.Aliases = append(payee.Aliases, a)
				existing[a] = true
			}
		}
		payee.UpdatedAt = time.Now().UTC()

		if err := store.Payees.Update(r.Context(), payee.ID, *payee); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Payee aliases added - Payee: %s, Count: %d", payeeID, len(req.Aliases))
		writeJSON(w, http.StatusOK, payee)
	}
}
