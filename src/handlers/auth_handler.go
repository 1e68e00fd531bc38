package handlers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
	"github.com/lidiamcfreitas/budget-api/src/db"
	"github.com/lidiamcfreitas/budget-api/src/docstore"
	"github.com/lidiamcfreitas/budget-api/src/models"
	"github.com/lidiamcfreitas/budget-api/src/util"
)

func Register(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		if !util.ValidateEmail(req.Email) {
			log.Printf("ERROR: Email validation failed during registration - Email: %s", req.Email)
			writeError(w, r, apperr.Validation("invalid email format"))
			return
		}
		if !util.ValidateUsername(req.Username) {
			log.Printf("ERROR: Username validation failed during registration - Username: %s", req.Username)
			writeError(w, r, apperr.Validation("username must be 3-30 characters, alphanumeric and underscores only"))
			return
		}
		if !util.ValidatePassword(req.Password) {
			log.Printf("ERROR: Password validation failed during registration - Username: %s", req.Username)
			writeError(w, r, apperr.Validation("password must be at least 8 characters with uppercase, lowercase, digit, and special character"))
			return
		}

		if existing, err := store.UserByUsername(r.Context(), req.Username); err != nil {
			writeError(w, r, err)
			return
		} else if existing != nil {
			writeError(w, r, apperr.Conflict("username already taken"))
			return
		}
		if existing, err := store.UserByEmail(r.Context(), req.Email); err != nil {
			writeError(w, r, err)
			return
		} else if existing != nil {
			writeError(w, r, apperr.Conflict("email already registered"))
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, r, apperr.Internal(err, "hash password"))
			return
		}

		user := models.User{
			ID:           docstore.NewID(),
			Email:        req.Email,
			Username:     req.Username,
			PasswordHash: string(hashed),
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.Users.Create(r.Context(), user.ID, user); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: User registered - Username: %s, ID: %s", user.Username, user.ID)
		writeJSON(w, http.StatusCreated, models.RegisterResponse{
			ID:         user.ID,
			Email:      user.Email,
			Username:   user.Username,
			SuperAdmin: user.SuperAdmin,
		})
	}
}

func Login(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := store.UserByUsername(r.Context(), req.Username)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if user == nil {
			log.Printf("ERROR: Login attempt for unknown username: %s", req.Username)
			writeError(w, r, apperr.Unauthorized("invalid credentials"))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Printf("ERROR: Invalid password attempt for user %s", user.ID)
			writeError(w, r, apperr.Unauthorized("invalid credentials"))
			return
		}

		claims := jwt.MapClaims{
			"user_id":     user.ID,
			"username":    user.Username,
			"super_admin": user.SuperAdmin,
			"exp":         time.Now().Add(168 * time.Hour).Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
		if err != nil {
			writeError(w, r, apperr.Internal(err, "sign token"))
			return
		}

		log.Printf("INFO: User logged in - Username: %s, ID: %s", user.Username, user.ID)
		writeJSON(w, http.StatusOK, map[string]any{
			"token": signed,
			"user":  user.Response(),
		})
	}
}
