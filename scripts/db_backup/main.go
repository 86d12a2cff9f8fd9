package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/garnizeh/rozgar/internal/config"
	"github.com/garnizeh/rozgar/internal/db"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	src := cfg.DatabasePath
	dst := fmt.Sprintf("%s.%s.bak", src, time.Now().UTC().Format("20060102T150405Z"))
	if len(os.Args) > 1 {
		dst = os.Args[1]
	}

	database, err := db.New(ctx, src, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// VACUUM INTO writes a consistent copy even while the server holds the file
	if _, err := database.Exec(ctx, `VACUUM INTO ?`, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup completed: %s\n", dst)
}
