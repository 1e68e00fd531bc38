package models

import "time"

type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	PasswordHash    string    `json:"password_hash"`
	SuperAdmin      bool      `json:"super_admin"`
	DefaultBudgetID *string   `json:"default_budget_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserResponse is the API-facing view of a user, without the password hash.
type UserResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	SuperAdmin      bool      `json:"super_admin"`
	DefaultBudgetID *string   `json:"default_budget_id"`
	CreatedAt       time.Time `json:"created_at"`
}

func (u *User) Response() UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		Username:        u.Username,
		SuperAdmin:      u.SuperAdmin,
		DefaultBudgetID: u.DefaultBudgetID,
		CreatedAt:       u.CreatedAt,
	}
}
