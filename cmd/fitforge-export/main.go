package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/meltforce/fitforge/internal/config"
	"github.com/meltforce/fitforge/internal/export"
	"github.com/meltforce/fitforge/internal/models"
	"github.com/meltforce/fitforge/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outDir := flag.String("out", ".", "directory to write CSV files into")
	userID := flag.Int("user", 1, "user ID to export")
	dryRun := flag.Bool("dry-run", false, "report what would be exported without writing anything")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitforge-export", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// State database remembers which sessions were already exported, so
	// repeated runs only pick up new ones.
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	state, err := export.OpenStateDB(filepath.Join(homeDir, ".fitforge-export"))
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	sessions, err := db.CompletedSessions(ctx, *userID)
	if err != nil {
		log.Error("failed to load completed sessions", "error", err)
		os.Exit(1)
	}

	var pending []models.Session
	skipped := 0
	for _, s := range sessions {
		done, err := state.IsExported(s.ID.String(), len(s.Sets))
		if err != nil {
			log.Error("state lookup failed", "session", s.ID, "error", err)
			os.Exit(1)
		}
		if done {
			skipped++
			continue
		}
		pending = append(pending, s)
	}

	log.Info("export scan complete", "total", len(sessions), "pending", len(pending), "skipped", skipped)

	if len(pending) == 0 {
		log.Info("nothing to export")
		return
	}

	if *dryRun {
		log.Info("DRY RUN mode, no files written")
		for _, s := range pending {
			log.Info("would export", "session", s.ID, "started", s.StartedAt.Format("2006-01-02"), "sets", len(s.Sets))
		}
		return
	}

	outPath := filepath.Join(*outDir, fmt.Sprintf("fitforge-%s.csv", time.Now().UTC().Format("20060102-150405")))
	f, err := os.Create(outPath)
	if err != nil {
		log.Error("failed to create output file", "path", outPath, "error", err)
		os.Exit(1)
	}

	if err := export.WriteCSV(f, pending); err != nil {
		f.Close()
		log.Error("csv write failed", "error", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		log.Error("failed to close output file", "error", err)
		os.Exit(1)
	}

	// Mark sessions only after the file is fully written and closed
	for _, s := range pending {
		if err := state.MarkExported(s.ID.String(), len(s.Sets)); err != nil {
			log.Error("failed to mark session exported", "session", s.ID, "error", err)
			os.Exit(1)
		}
	}

	log.Info("export complete", "file", outPath, "sessions", len(pending))
}
