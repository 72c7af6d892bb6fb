package upload

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// lastUploadKey holds the time of the last upload run without errors.
const lastUploadKey = "last_upload"

// Stats tracks upload progress.
type Stats struct {
	SessionsTotal    int
	SessionsUploaded int
	SessionsErrored  int

	SetsSent     int
	SetsInserted int64
}

// Uploader pushes journaled sessions to the RepCoach server.
type Uploader struct {
	client *Client
	state  *StateDB
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dryRun: dryRun,
		log:    log,
	}
}

// Run uploads every pending session. A failing session is logged and left
// pending for the next run; the others continue.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	pending, err := u.state.PendingSessions()
	if err != nil {
		return &u.stats, fmt.Errorf("reading journal: %w", err)
	}
	u.stats.SessionsTotal = len(pending)

	for _, fs := range pending {
		if u.dryRun {
			u.log.Info("would upload", "session_id", fs.SessionID, "plan", fs.PlanName, "sets", len(fs.Sets))
			continue
		}

		inserted, err := u.client.SendSession(ctx, fs)
		if err != nil {
			u.stats.SessionsErrored++
			u.log.Error("upload failed", "session_id", fs.SessionID, "error", err)
			continue
		}
		if err := u.state.MarkUploaded(fs.SessionID); err != nil {
			return &u.stats, fmt.Errorf("marking %s uploaded: %w", fs.SessionID, err)
		}

		u.stats.SessionsUploaded++
		u.stats.SetsSent += len(fs.Sets)
		u.stats.SetsInserted += inserted
		u.log.Info("session uploaded", "session_id", fs.SessionID, "sets", len(fs.Sets), "inserted", inserted)
	}

	if u.stats.SessionsErrored > 0 {
		return &u.stats, fmt.Errorf("%d of %d sessions failed", u.stats.SessionsErrored, u.stats.SessionsTotal)
	}
	if !u.dryRun {
		if err := u.state.SetSyncState(lastUploadKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
			u.log.Warn("recording last upload failed", "error", err)
		}
	}
	return &u.stats, nil
}

// LastUpload returns when the last clean upload run finished, or "" if never.
func (u *Uploader) LastUpload() (string, error) {
	return u.state.GetSyncState(lastUploadKey)
}
