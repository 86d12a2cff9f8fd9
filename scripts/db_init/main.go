package main

import (
	"context"
	"fmt"
	"os"

	rozgardb "github.com/garnizeh/rozgar/db"
	"github.com/garnizeh/rozgar/internal/config"
	"github.com/garnizeh/rozgar/internal/db"
	"github.com/garnizeh/rozgar/internal/jobboard"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, rozgardb.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	// the seed is not stored; parsing it here catches a broken file before the server starts
	seed, err := jobboard.LoadSeed(rozgardb.SeedFiles, "seed/jobs.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database initialized successfully (%d seed jobs).\n", len(seed))
}
