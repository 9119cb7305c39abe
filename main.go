package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"carvy-clinic/internal/app"
	"carvy-clinic/internal/config"
	"carvy-clinic/internal/database"
	"carvy-clinic/internal/storage"
)

func main() {
	// Load environment variables; a missing .env just means defaults.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment defaults")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	store, err := storage.NewFileStorage(cfg.DataDir, cfg.StorageQuotaBytes)
	if err != nil {
		log.Fatalf("Error opening storage: %v", err)
	}

	db := database.New(store)
	if cfg.SeedOnFirstRun && db.IsEmpty() {
		db.Seed()
	}

	if err := app.New(db, cfg).Run(os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Session error: %v", err)
	}
}
