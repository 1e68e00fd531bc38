package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
	"github.com/lidiamcfreitas/budget-api/src/db"
	"github.com/lidiamcfreitas/budget-api/src/middleware"
	"github.com/lidiamcfreitas/budget-api/src/util"
)

func GetUser(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)
		requestedID := chi.URLParam(r, "user_id")

		if userID != requestedID {
			log.Printf("ERROR: Forbidden user access attempt - Authenticated user: %s, Requested user: %s", userID, requestedID)
			writeError(w, r, apperr.Forbidden("forbidden"))
			return
		}

		user, err := store.UserByID(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, user.Response())
	}
}

func UpdateUser(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req struct {
			Email           *string `json:"email"`
			DefaultBudgetID *string `json:"default_budget_id"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := store.UserByID(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if req.Email != nil {
			if !util.ValidateEmail(*req.Email) {
				log.Printf("ERROR: Email validation failed during user update - Email: %s, User: %s", *req.Email, userID)
				writeError(w, r, apperr.Validation("invalid email format"))
				return
			}
			user.Email = *req.Email
		}
		if req.DefaultBudgetID != nil {
			budget, err := store.BudgetByID(r.Context(), *req.DefaultBudgetID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if budget.UserID != userID {
				writeError(w, r, apperr.Forbidden("budget belongs to another user"))
				return
			}
			user.DefaultBudgetID = req.DefaultBudgetID
		}

		if err := store.Users.Update(r.Context(), user.ID, *user); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: User profile updated - User: %s", userID)
		writeJSON(w, http.StatusOK, user.Response())
	}
}

func ChangePassword(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req struct {
			CurrentPassword string `json:"current_password"`
			NewPassword     string `json:"new_password"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := store.UserByID(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			log.Printf("ERROR: Invalid current password attempt for user %s", userID)
			writeError(w, r, apperr.Unauthorized("current password is incorrect"))
			return
		}

		if !util.ValidatePassword(req.NewPassword) {
			log.Printf("ERROR: Password validation failed during change password - User: %s", userID)
			writeError(w, r, apperr.Validation("password must be at least 8 characters with uppercase, lowercase, digit, and special character"))
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, r, apperr.Internal(err, "hash password"))
			return
		}
		user.PasswordHash = string(hashed)

		if err := store.Users.Update(r.Context(), user.ID, *user); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: User password changed - User: %s", userID)
		writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
	}
}

// DeleteUser removes the account and everything hanging off it: budgets,
// groups, categories, accounts, transactions, recurring schedules, payees.
func DeleteUser(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r)

		var req struct {
			UserID string `json:"user_id"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if req.UserID != userID {
			log.Printf("ERROR: Forbidden delete attempt - Authenticated user: %s, Requested user: %s", userID, req.UserID)
			writeError(w, r, apperr.Forbidden("forbidden"))
			return
		}

		log.Printf("INFO: Deleting user %s and all associated data", userID)

		budgets, err := store.BudgetsForUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, b := range budgets {
			if err := deleteBudgetCascade(r, store, b.ID); err != nil {
				writeError(w, r, err)
				return
			}
		}

		payees, err := store.PayeesForUser(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, p := range payees {
			if err := store.Payees.Delete(r.Context(), p.ID); err != nil {
				writeError(w, r, err)
				return
			}
		}

		if err := store.Users.Delete(r.Context(), userID); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: User %s deleted successfully. Instructing client to remove JWT and redirect.", userID)
		writeJSON(w, http.StatusOK, map[string]string{
			"message":  "user deleted",
			"redirect": "/register",
		})
	}
}
