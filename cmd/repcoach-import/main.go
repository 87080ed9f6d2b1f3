package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/repcoach/internal/config"
	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	csvPath := flag.String("file", "", "path to strength-log CSV export (required)")
	userID := flag.Int("user", 1, "user ID to import for")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *csvPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repcoach-import -config config.yaml -file export.csv [-user N]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Error("cannot open export file", "path", *csvPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

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
	log.Info("migrations applied")

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	importer := ingest.NewImporter(db, log)
	result, err := importer.Import(ctx, f, *userID)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	log.Info("import complete",
		"sessions_parsed", result.SessionsParsed,
		"sets_received", result.SetsReceived,
		"sets_inserted", result.SetsInserted,
		"warmups_skipped", result.WarmupsSkipped,
	)
	if len(result.UnknownExercises) > 0 {
		log.Info("unmatched exercises (not in library)", "names", result.UnknownExercises)
	}
}
