package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/repcoach/internal/voicelog"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  repcoach-log add -file set.ogg [-exercise N] [-format ogg]
  repcoach-log sync -server <URL> -key <API key>

Recordings are queued locally and sent on sync, so sets can be logged
at the gym without connectivity.

`)
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	audioPath := flag.String("file", "", "audio file to queue (add)")
	exerciseID := flag.Int("exercise", 0, "exercise ID to log the set against (add, optional)")
	format := flag.String("format", "", "audio format hint, e.g. ogg or m4a (add, optional)")
	serverURL := flag.String("server", "", "RepCoach server URL (sync)")
	apiKey := flag.String("key", "", "API key (sync)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repcoach-log", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if flag.NArg() != 1 {
		usage()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	queue, err := voicelog.OpenQueue(filepath.Join(homeDir, ".repcoach-log"))
	if err != nil {
		log.Error("failed to open queue", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	switch flag.Arg(0) {
	case "add":
		if *audioPath == "" {
			usage()
		}
		var exID *int
		if *exerciseID > 0 {
			exID = exerciseID
		}
		fmtHint := *format
		if fmtHint == "" {
			fmtHint = strings.TrimPrefix(filepath.Ext(*audioPath), ".")
		}
		queued, err := queue.Enqueue(*audioPath, fmtHint, exID)
		if err != nil {
			log.Error("failed to queue recording", "error", err)
			os.Exit(1)
		}
		if queued {
			log.Info("recording queued", "path", *audioPath)
		} else {
			log.Info("recording already queued, skipping", "path", *audioPath)
		}

	case "sync":
		if *serverURL == "" || *apiKey == "" {
			usage()
		}
		client := voicelog.NewClient(strings.TrimRight(*serverURL, "/"), *apiKey)
		synced, err := voicelog.Sync(queue, client, log)
		if err != nil {
			log.Error("sync failed", "synced", synced, "error", err)
			os.Exit(1)
		}
		log.Info("sync complete", "synced", synced)

	default:
		usage()
	}
}
