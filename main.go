package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/example/artquizbot/internal/bot"
	"github.com/example/artquizbot/internal/catalog"
	"github.com/example/artquizbot/internal/cycle"
	"github.com/example/artquizbot/internal/database"
	"github.com/example/artquizbot/internal/engine"
	"github.com/example/artquizbot/internal/plan"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	if err := database.Connect(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join("data", "paintings.json")
	}

	// A corrupt catalog must not start the service
	idx, err := catalog.Load(dataPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	log.Printf("Catalog loaded: %d paintings", idx.Size())

	secret := os.Getenv("DAY_SECRET")
	if secret == "" {
		log.Fatal("DAY_SECRET environment variable is not set")
	}

	config := bot.ConfigFromEnv()
	generator := plan.NewGenerator(idx, secret, plan.ConfigFromEnv())
	tracker := cycle.NewTracker(idx)
	eng := engine.New(idx, generator, tracker, config.Location)

	if err := eng.RunBackfillOnce(); err != nil {
		log.Fatalf("Failed to backfill aggregates: %v", err)
	}

	b, err := bot.New(eng, idx, config)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		b.Stop()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
	log.Println("Bot stopped successfully")
}
