package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
	"github.com/lidiamcfreitas/budget-api/src/backfill"
	"github.com/lidiamcfreitas/budget-api/src/db"
	"github.com/lidiamcfreitas/budget-api/src/models"
	"github.com/lidiamcfreitas/budget-api/src/util"
)

// PutExchangeRates stores the rate table for a base currency. Rates are
// administered, not fetched from an external feed.
func PutExchangeRates(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BaseCurrency string             `json:"base_currency"`
			Rates        map[string]float64 `json:"rates"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		if !util.ValidCurrency(req.BaseCurrency) {
			writeError(w, r, apperr.Validation("unsupported base currency"))
			return
		}
		if len(req.Rates) == 0 {
			writeError(w, r, apperr.Validation("rates must not be empty"))
			return
		}
		for code, factor := range req.Rates {
			if !util.ValidCurrency(code) {
				writeError(w, r, apperr.Validation("unsupported currency in rates: %s", code))
				return
			}
			if factor <= 0 {
				writeError(w, r, apperr.Validation("rate for %s must be positive", code))
				return
			}
		}

		rate := models.ExchangeRate{
			BaseCurrency: req.BaseCurrency,
			Rates:        req.Rates,
			UpdatedAt:    time.Now().UTC(),
		}
		if err := store.PutRates(r.Context(), &rate); err != nil {
			writeError(w, r, err)
			return
		}

		log.Printf("INFO: Exchange rates stored - Base: %s, Currencies: %d", rate.BaseCurrency, len(rate.Rates))
		writeJSON(w, http.StatusOK, rate)
	}
}

func GetExchangeRates(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := chi.URLParam(r, "base")

		rate, err := store.RateByBase(r.Context(), base)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, rate)
	}
}

func ClearCache() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cacheName := chi.URLParam(r, "cache_name")

		switch cacheName {
		case "budgets":
			db.ClearAllBudgetCaches()
		case "accounts":
			db.ClearAllAccountCaches()
		case "rates":
			db.ClearAllRateCaches()
		case "all":
			db.ClearAllBudgetCaches()
			db.ClearAllAccountCaches()
			db.ClearAllRateCaches()
		default:
			writeError(w, r, apperr.Validation("unknown cache: %s", cacheName))
			return
		}

		log.Printf("INFO: Cache cleared - Cache: %s", cacheName)
		writeJSON(w, http.StatusOK, map[string]string{"message": "cache cleared", "cache": cacheName})
	}
}

// RunBackfill kicks off the schema backfill. ?dry_run=true reports what
// would change without writing.
func RunBackfill(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dryRun := r.URL.Query().Get("dry_run") == "true"

		result, err := backfill.NewRunner(store).Run(r.Context(), dryRun)
		if err != nil {
			if result != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"error":  "backfill failed",
					"result": result,
				})
				log.Printf("ERROR: Backfill failed: %v", err)
				return
			}
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
