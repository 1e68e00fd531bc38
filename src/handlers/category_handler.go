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

// loadOwnedCategory resolves a category through its group to the owning
// budget and checks the caller owns it.
func loadOwnedCategory(r *http.Request, store *db.Store, accessor *ledger.Accessor, categoryID string) (*models.Category, *models.Budget, error) {
	category, err := store.CategoryByID(r.Context(), categoryID)
	if err != nil {
		return nil, nil, err
	}
	group, err := store.GroupByID(r.Context(), category.GroupID)
	if err != nil {
		return nil, nil, err
	}
	budget, err := accessor.GetBudget(r.Context(), group.BudgetID)
	if err != nil {
		return nil, nil, err
	}
	if err := accessor.ValidateAccess(budget.UserID, middleware.UserID(r)); err != nil {
		return nil, nil, err
	}
	return category, budget, nil
}

func CreateCategory(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GroupID string                `json:"group_id"`
			Name    string                `json:"name"`
			Target  *models.SavingsTarget `json:"target"`
			Notes   string                `json:"notes"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Name == "" {
			writeError(w, r, apperr.Validation("category name is required"))
			return
		}
		if req.GroupID == "" {
			writeError(w, r, apperr.Validation("group_id is required"))
			return
		}

		if _, _, err := loadOwnedGroup(r, store, accessor, req.GroupID); err != nil {
			writeError(w, r, err)
			return
		}

		now := time.Now().UTC()
		category := models.Category{
			ID:              docstore.NewID(),
			GroupID:         req.GroupID,
			Name:            req.Name,
			AssignedAmounts: map[string]int64{},
			Target:          req.Target,
			Notes:           req.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := store.Categs.Create(r.Context(), category.ID, category); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Category created - Category: %s, Group: %s", category.ID, req.GroupID)
		writeJSON(w, http.StatusCreated, category)
	}
}

func GetCategory(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID := chi.URLParam(r, "category_id")

		category, _, err := loadOwnedCategory(r, store, accessor, categoryID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, category)
	}
}

func UpdateCategory(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID := chi.URLParam(r, "category_id")

		var req struct {
			Name   *string               `json:"name"`
			Target *models.SavingsTarget `json:"target"`
			Notes  *string               `json:"notes"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		category, _, err := loadOwnedCategory(r, store, accessor, categoryID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if req.Name != nil {
			if *req.Name == "" {
				writeError(w, r, apperr.Validation("category name is required"))
				return
			}
			category.Name = *req.Name
		}
		if req.Target != nil {
			category.Target = req.Target
		}
		if req.Notes != nil {
			category.Notes = *req.Notes
		}
		category.UpdatedAt = time.Now().UTC()

		if err := store.Categs.Update(r.Context(), category.ID, *category); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Category updated - Category: %s", categoryID)
		writeJSON(w, http.StatusOK, category)
	}
}

func DeleteCategory(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID := chi.URLParam(r, "category_id")

		category, _, err := loadOwnedCategory(r, store, accessor, categoryID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := store.Categs.Delete(r.Context(), category.ID); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Category deleted - Category: %s", categoryID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
	}
}

// SetAssignedAmount writes the envelope amount for one month bucket.
func SetAssignedAmount(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID := chi.URLParam(r, "category_id")
		monthKey := chi.URLParam(r, "month")

		var req struct {
			Amount int64 `json:"amount"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Amount < 0 {
			writeError(w, r, apperr.Validation("assigned amount must not be negative"))
			return
		}

		category, _, err := loadOwnedCategory(r, store, accessor, categoryID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := ledger.SetAssignedAmount(category, monthKey, req.Amount); err != nil {
			writeError(w, r, err)
			return
		}
		category.UpdatedAt = time.Now().UTC()

		if err := store.Categs.Update(r.Context(), category.ID, *category); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Assigned amount set - Category: %s, Month: %s, Amount: %d", categoryID, monthKey, req.Amount)
		writeJSON(w, http.StatusOK, category)
	}
}

// GetAvailableBalance reports what the category still has to spend for the
// requested month: carried-over cash plus the month's assignment minus the
// month's cash and credit spending.
func GetAvailableBalance(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID := chi.URLParam(r, "category_id")
		monthKey := r.URL.Query().Get("month")

		category, budget, err := loadOwnedCategory(r, store, accessor, categoryID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		start, end, err := ledger.MonthPeriod(monthKey)
		if err != nil {
			writeError(w, r, err)
			return
		}

		txns, err := store.TransactionsForBudgetPeriod(r.Context(), budget.ID, start, end)
		if err != nil {
			writeError(w, r, err)
			return
		}
		accounts, err := store.AccountsForBudget(r.Context(), budget.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		accountTypes := make(map[string]models.AccountType, len(accounts))
		for _, a := range accounts {
			accountTypes[a.ID] = a.Type
		}

		spending := ledger.SpendingByCategory(txns, accountTypes, start, end)[category.ID]
		available, err := ledger.AvailableBalance(category, monthKey, spending)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"category_id":         category.ID,
			"month":               monthKey,
			"available":           available,
			"assigned":            ledger.AssignedAmount(category, monthKey),
			"cash_spending":       spending.Cash,
			"credit_spending":     spending.Credit,
			"remaining_to_target": ledger.AmountRemainingToTarget(category, monthKey),
		})
	}
}
