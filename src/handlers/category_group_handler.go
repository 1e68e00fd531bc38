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

// loadOwnedGroup resolves a group and checks the caller owns the budget it
// belongs to.
func loadOwnedGroup(r *http.Request, store *db.Store, accessor *ledger.Accessor, groupID string) (*models.CategoryGroup, *models.Budget, error) {
	group, err := store.GroupByID(r.Context(), groupID)
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
	return group, budget, nil
}

func CreateCategoryGroup(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		budgetID := chi.URLParam(r, "budget_id")

		var req struct {
			Name string `json:"name"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.Name == "" {
			writeError(w, r, apperr.Validation("group name is required"))
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

		now := time.Now().UTC()
		group := models.CategoryGroup{
			ID:        docstore.NewID(),
			BudgetID:  budgetID,
			Name:      req.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.Groups.Create(r.Context(), group.ID, group); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Category group created - Group: %s, Budget: %s", group.ID, budgetID)
		writeJSON(w, http.StatusCreated, group)
	}
}

func ListCategoryGroups(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
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

		groups, err := store.GroupsForBudget(r.Context(), budgetID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if groups == nil {
			groups = []models.CategoryGroup{}
		}

		writeJSON(w, http.StatusOK, groups)
	}
}

func GetCategoryGroup(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "group_id")

		group, _, err := loadOwnedGroup(r, store, accessor, groupID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		categories, err := store.CategoriesForGroup(r.Context(), groupID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if categories == nil {
			categories = []models.Category{}
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"group":      group,
			"categories": categories,
		})
	}
}

func UpdateCategoryGroup(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "group_id")

		var req struct {
			Name *string `json:"name"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		group, _, err := loadOwnedGroup(r, store, accessor, groupID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if req.Name != nil {
			if *req.Name == "" {
				writeError(w, r, apperr.Validation("group name is required"))
				return
			}
			group.Name = *req.Name
		}
		group.UpdatedAt = time.Now().UTC()

		if err := store.Groups.Update(r.Context(), group.ID, *group); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Category group updated - Group: %s", groupID)
		writeJSON(w, http.StatusOK, group)
	}
}

func DeleteCategoryGroup(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "group_id")

		group, _, err := loadOwnedGroup(r, store, accessor, groupID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		categories, err := store.CategoriesForGroup(r.Context(), group.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, c := range categories {
			if err := store.Categs.Delete(r.Context(), c.ID); err != nil {
				writeError(w, r, err)
				return
			}
		}

		if err := store.Groups.Delete(r.Context(), group.ID); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Category group deleted - Group: %s", groupID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "category group deleted"})
	}
}

// MoveCategoryToGroup reassigns a category into another group of the same
// budget. Categories always belong to exactly one group.
func MoveCategoryToGroup(store *db.Store, accessor *ledger.Accessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID := chi.URLParam(r, "group_id")
		categoryID := chi.URLParam(r, "category_id")

		group, budget, err := loadOwnedGroup(r, store, accessor, groupID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := accessor.ValidateCategoryInBudget(r.Context(), categoryID, budget); err != nil {
			writeError(w, r, err)
			return
		}
		category, err := store.CategoryByID(r.Context(), categoryID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		category.GroupID = group.ID
		category.UpdatedAt = time.Now().UTC()
		if err := store.Categs.Update(r.Context(), category.ID, *category); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Category moved - Category: %s, Group: %s", categoryID, groupID)
		writeJSON(w, http.StatusOK, category)
	}
}
