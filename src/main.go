package main

import (
	"log"
	"net/http"

	"github.com/lidiamcfreitas/budget-api/src/api"
	"github.com/lidiamcfreitas/budget-api/src/config"
	"github.com/lidiamcfreitas/budget-api/src/db"
)

func main() {
	cfg := config.Load()

	// Connect to database
	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	db.InitCache()
	store := db.NewStore(pool)

	// Router
	router := api.NewRouter(store, cfg.DemoMode)

	log.Println("API server running on port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
