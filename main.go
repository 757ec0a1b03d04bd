package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"evosweep/adapters/postgres"
	"evosweep/app"
	"evosweep/internal"
	"evosweep/internal/config"
	"evosweep/ports"
	"evosweep/ui"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewDefaultLogger()

	var ledger ports.ResultLedgerPort
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		pgLedger := postgres.NewResultLedger(db)
		if err := pgLedger.Migrate(context.Background()); err != nil {
			log.Fatalf("Failed to migrate ledger schema: %v", err)
		}
		ledger = pgLedger
		logger.Info("result ledger enabled")
	} else {
		logger.Info("DATABASE_URL not set, result persistence disabled")
	}

	analysis := app.NewAnalysisService(logger, ledger)
	paretoSvc := app.NewParetoService(logger)

	server := ui.NewServer(cfg, analysis, paretoSvc, logger)
	if err := server.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
