package main

import (
	"context"
	"log"

	"voucher-redemption-api/config"
	"voucher-redemption-api/services"

	"github.com/joho/godotenv"
)

// One-shot CLI for the duplicate-detection sweep, suitable for cron.
// Sweeps are not safe to run concurrently; schedule a single instance.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	config.InitDB()

	settings, err := config.LoadSettings(context.Background())
	if err != nil {
		log.Fatal("Failed to load settings:", err)
	}

	notifier := services.NewNotificationService(settings)
	svc := services.NewDedupService(config.DB, notifier)
	if err := svc.Sweep(); err != nil {
		log.Fatal("Dedup sweep failed:", err)
	}
}
