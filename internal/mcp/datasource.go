package mcp

import (
	"context"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/workout"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListPlans(ctx context.Context, userID int) ([]models.PlanRow, error)
	GetPlan(ctx context.Context, planID uuid.UUID, userID int) (*models.PlanRow, []workout.ExerciseSetRow, error)
	QuerySetLogs(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.SetLogRow, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
