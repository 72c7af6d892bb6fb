package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/claude/repcoach/internal/ingest/plan"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/runner"
	"github.com/claude/repcoach/internal/upload"
	"github.com/claude/repcoach/internal/workout"
	"github.com/google/uuid"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	planFile := flag.String("plan", "", "plan CSV export to run offline")
	planName := flag.String("name", "", "plan name inside the CSV (default: first plan)")
	serverURL := flag.String("server", "", "RepCoach server URL to fetch the plan from")
	planIDStr := flag.String("plan-id", "", "plan UUID on the server")
	apiKey := flag.String("api-key", os.Getenv("REPCOACH_API_KEY"), "API key for uploading the finished session")
	block := flag.Int("block", 0, "block to start at")
	member := flag.Int("member", 0, "exercise within the block to start at")
	stateDir := flag.String("state-dir", "", "journal directory (default ~/.repcoach-run)")
	noUpload := flag.Bool("no-upload", false, "only journal the finished session")
	verbose := flag.Bool("v", false, "debug logging")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repcoach-run", Version)
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if (*planFile == "") == (*planIDStr == "") {
		fmt.Fprintf(os.Stderr, "Usage: repcoach-run -plan <file.csv> [-name <plan>] | -server <URL> -plan-id <UUID>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var client *upload.Client
	if *serverURL != "" {
		client = upload.NewClient(*serverURL, *apiKey)
	}

	var (
		name   string
		planID *uuid.UUID
		rows   []workout.ExerciseSetRow
	)
	if *planFile != "" {
		p, err := loadPlanFile(*planFile, *planName)
		if err != nil {
			log.Error("failed to load plan", "file", *planFile, "error", err)
			os.Exit(1)
		}
		name, rows = p.Name, p.Rows
	} else {
		if client == nil {
			fmt.Fprintf(os.Stderr, "Error: -plan-id needs -server\n")
			os.Exit(1)
		}
		id, err := uuid.Parse(*planIDStr)
		if err != nil {
			log.Error("invalid plan id", "plan_id", *planIDStr, "error", err)
			os.Exit(1)
		}
		detail, err := client.FetchPlan(ctx, id)
		if err != nil {
			log.Error("failed to fetch plan", "plan_id", id, "error", err)
			os.Exit(1)
		}
		name, planID, rows = detail.Name, &detail.ID, detail.Rows
	}

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

	session, err := workout.StartSession(workout.Group(rows), *block, *member)
	if err != nil {
		log.Error("invalid start position", "error", err)
		os.Exit(1)
	}
	out, err := runner.New(os.Stdin, os.Stdout, session, name, log).Run(ctx)
	if err != nil {
		log.Error("workout aborted", "error", err)
		os.Exit(1)
	}
	if !out.Finished {
		fmt.Printf("workout not finished, %d sets discarded\n", len(out.Sets))
		return
	}

	fs := models.FinishedSession{
		SessionID:  uuid.New(),
		PlanID:     planID,
		PlanName:   name,
		FinishedAt: time.Now(),
		Sets:       out.Sets,
	}
	if err := state.SaveSession(fs); err != nil {
		log.Error("failed to journal session", "error", err)
		os.Exit(1)
	}
	fmt.Printf("session %s saved to %s\n", fs.SessionID, dir)

	if client == nil || *noUpload {
		return
	}
	stats, err := upload.New(client, state, false, log).Run(ctx)
	if err != nil {
		fmt.Printf("upload failed, run repcoach-upload later: %v\n", err)
		return
	}
	fmt.Printf("uploaded %d sessions (%d sets)\n", stats.SessionsUploaded, stats.SetsSent)
}

// loadPlanFile parses a CSV export and picks the named plan, or the first.
func loadPlanFile(path, name string) (*models.PlanInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	plans, err := plan.Parse(f)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, plan.ErrEmptyPlan
	}
	if name == "" {
		return &plans[0], nil
	}
	for i := range plans {
		if strings.EqualFold(plans[i].Name, name) {
			return &plans[i], nil
		}
	}
	return nil, fmt.Errorf("plan %q not found in %s", name, path)
}
