package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/evacreport/backend/internal/config"
	"github.com/evacreport/backend/internal/db"
	"github.com/evacreport/backend/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	logger.Initialize()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if !cfg.UsesSQL() {
		log.Fatalf("STORE_DRIVER %q has no schema to migrate", cfg.StoreDriver)
	}

	gdb, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close(gdb)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(gdb); err != nil {
		log.Fatalf("Error running migrations: %v", err)
	}

	log.Println("✅ Database migrations completed successfully!")
}
