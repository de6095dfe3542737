package main

import (
	"context"
	"flag"
	"os"
	"time"

	"communityevents/config"
	"communityevents/internal/repository/postgres"
)

func main() {
	rollback := flag.Bool("rollback", false, "Drop all tables instead of creating them")
	flag.Parse()

	log := config.NewLogger().With("component", "migrate")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	log.Info("Starting migration process", "rollback", *rollback)
	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if *rollback {
		if err := postgres.Rollback(ctx, db); err != nil {
			log.Error("Migration rollback failed", "error", err)
			os.Exit(1)
		}
		log.Info("Migration rollback completed successfully")
		return
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("Migrations completed successfully")
}
