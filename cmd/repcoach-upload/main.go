package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/claude/repcoach/internal/upload"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "RepCoach server URL (e.g. https://repcoach.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("REPCOACH_API_KEY"), "API key for set log upload")
	stateDir := flag.String("state-dir", "", "journal directory (default ~/.repcoach-run)")
	dryRun := flag.Bool("dry-run", false, "list pending sessions but don't send them")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repcoach-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	dir := *stateDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".repcoach-run")
	}

	state, err := upload.OpenStateDB(dir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Client stays nil in dry-run mode
	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *apiKey)
	} else {
		log.Info("DRY RUN mode: pending sessions are listed but not sent")
	}

	uploader := upload.New(client, state, *dryRun, log)
	if last, err := uploader.LastUpload(); err == nil && last != "" {
		log.Info("previous upload", "at", last)
	}

	stats, err := uploader.Run(context.Background())
	if err != nil {
		log.Error("upload failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Sessions total:    %d\n", stats.SessionsTotal)
	fmt.Printf("  Sessions uploaded: %d\n", stats.SessionsUploaded)
	fmt.Printf("  Sessions errored:  %d\n", stats.SessionsErrored)
	fmt.Println()
	fmt.Printf("  Sets sent:         %d\n", stats.SetsSent)
	fmt.Printf("  Sets inserted:     %d (rest already stored)\n", stats.SetsInserted)
	fmt.Println()
}
