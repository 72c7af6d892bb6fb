package plan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/claude/repcoach/internal/ingest"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/workout"
	"github.com/google/uuid"
)

var (
	// ErrEmptyPlan is returned for a plan without a name or without sets.
	ErrEmptyPlan = errors.New("empty plan")
	// ErrParse wraps errors from reading a plan CSV export.
	ErrParse = errors.New("parsing CSV")
)

// Store persists plans. *storage.DB satisfies it.
type Store interface {
	InsertPlan(ctx context.Context, userID int, name string, rows []workout.ExerciseSetRow) (uuid.UUID, error)
}

// Provider processes plan uploads.
type Provider struct {
	db  Store
	log *slog.Logger
}

// NewProvider creates a new plan ingest provider.
func NewProvider(db Store, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a plan CSV export and stores every plan in it.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	plans, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: no plans found", ErrEmptyPlan)
	}
	return p.store(ctx, plans, userID)
}

// IngestPlan stores a single plan delivered as JSON.
func (p *Provider) IngestPlan(ctx context.Context, in models.PlanInput, userID int) (*ingest.Result, error) {
	return p.store(ctx, []models.PlanInput{in}, userID)
}

func (p *Provider) store(ctx context.Context, plans []models.PlanInput, userID int) (*ingest.Result, error) {
	result := &ingest.Result{PlansReceived: len(plans)}

	for _, in := range plans {
		name := strings.TrimSpace(in.Name)
		if name == "" || len(in.Rows) == 0 {
			return result, fmt.Errorf("%w: %q has %d sets", ErrEmptyPlan, in.Name, len(in.Rows))
		}

		blocks := workout.Group(in.Rows)
		for _, b := range blocks {
			if b.Type != workout.BlockNormal && b.RoundsMismatched() {
				p.log.Warn("block members plan different set counts; rounds normalized",
					"plan", name, "block", b.Index, "rounds", b.Rounds())
			}
		}

		id, err := p.db.InsertPlan(ctx, userID, name, in.Rows)
		if err != nil {
			return result, fmt.Errorf("storing plan %q: %w", name, err)
		}
		p.log.Info("plan stored", "plan_id", id, "name", name, "sets", len(in.Rows), "blocks", len(blocks))

		result.PlansInserted++
		result.PlanIDs = append(result.PlanIDs, id)
		result.SetsReceived += len(in.Rows)
	}
	return result, nil
}
