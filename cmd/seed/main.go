package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/evacreport/backend/internal/config"
	"github.com/evacreport/backend/internal/logger"
	"github.com/evacreport/backend/internal/repository"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	logger.Initialize()

	path := flag.String("file", "data/seed.json", "seed file with incidents, centers, and users")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.StoreDriver == config.DriverMemory {
		log.Fatal("STORE_DRIVER is memory; set postgres, sqlite, or firestore to seed a persistent store")
	}

	data, err := repository.LoadSeedFile(*path)
	if err != nil {
		log.Fatalf("Error loading seed file: %v", err)
	}

	ctx := context.Background()
	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Error opening store: %v", err)
	}
	defer closeStore()

	log.Println("Seeding store with sample data...")
	res, err := repository.Apply(ctx, store, data, cfg.DemographicsSchema)
	if err != nil {
		log.Fatalf("Error seeding store: %v", err)
	}
	log.Printf("✅ Seeding completed: %d incidents, %d centers, %d users (%d existing users skipped)",
		res.Incidents, res.Centers, res.Users, res.Skipped)
}
