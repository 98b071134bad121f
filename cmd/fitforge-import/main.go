package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/fitforge/internal/config"
	"github.com/meltforce/fitforge/internal/export"
	"github.com/meltforce/fitforge/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	csvPath := flag.String("path", "", "path to a FitForge export CSV (required)")
	userID := flag.Int("user", 1, "user ID to attach imported sessions to")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *csvPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitforge-import -config config.yaml -path export.csv [-user N] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Error("failed to open export file", "path", *csvPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	sessions, err := export.ReadCSV(f)
	if err != nil {
		log.Error("failed to parse export file", "error", err)
		os.Exit(1)
	}

	setCount := 0
	for _, s := range sessions {
		setCount += len(s.Sets)
	}
	log.Info("parsed export", "sessions", len(sessions), "sets", setCount)

	if *dryRun {
		log.Info("DRY RUN mode, no data written")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	imported, skipped := 0, 0
	for i := range sessions {
		sessions[i].UserID = *userID
		inserted, err := db.ImportCompletedSession(ctx, &sessions[i])
		if err != nil {
			log.Error("import failed", "session", sessions[i].ID, "error", err)
			os.Exit(1)
		}
		if inserted {
			imported++
		} else {
			skipped++
		}
	}

	log.Info("import complete", "imported", imported, "skipped", skipped)
}
