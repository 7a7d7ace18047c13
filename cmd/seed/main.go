package main

import (
	"log"
	"os"

	"crm/internal/config"
	"crm/internal/db"
	"crm/internal/models"
	console "crm/internal/utils/logger"

	"github.com/joho/godotenv"
)

// Seeds the database with the demo dataset: an admin account, sample
// users, standard records, the Product custom object and the starter
// permission sets. Safe to re-run; it is a no-op once an admin exists.
func main() {

	logger := console.New("seed")

	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("Failed to close database connection: %v", err)
		}
	}()

	if err := models.SeedSampleData(db.GetDB()); err != nil {
		log.Fatalf("Failed to seed sample data: %v", err)
	}

	logger.Success("Sample data seeded")
}
