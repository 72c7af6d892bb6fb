package models

import (
	"time"

	"github.com/claude/repcoach/internal/workout"
	"github.com/google/uuid"
)

// PlanRow is a row of the plans table.
type PlanRow struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	SetCount  int       `json:"set_count"`
}

// PlanSetRow is a row for the plan_sets table.
type PlanSetRow struct {
	PlanID       uuid.UUID
	Position     int
	ExerciseID   string
	ExerciseName string
	BlockType    string
	OrderIndex   *int
	SetNumber    int
	Reps         string
	Muscles      string
}

// NewPlanSetRow converts a planned set into its storage row.
func NewPlanSetRow(planID uuid.UUID, position int, r workout.ExerciseSetRow) PlanSetRow {
	return PlanSetRow{
		PlanID:       planID,
		Position:     position,
		ExerciseID:   r.ExerciseID,
		ExerciseName: r.ExerciseName,
		BlockType:    string(r.BlockType),
		OrderIndex:   r.OrderIndex,
		SetNumber:    r.SetNumber,
		Reps:         string(r.Reps),
		Muscles:      r.Muscles,
	}
}

// ExerciseSetRow converts the storage row back into a planned set.
func (p PlanSetRow) ExerciseSetRow() workout.ExerciseSetRow {
	return workout.ExerciseSetRow{
		ExerciseID:   p.ExerciseID,
		ExerciseName: p.ExerciseName,
		BlockType:    workout.ParseBlockType(p.BlockType),
		OrderIndex:   p.OrderIndex,
		SetNumber:    p.SetNumber,
		Reps:         workout.Reps(p.Reps),
		Muscles:      p.Muscles,
	}
}

// PlanInput is a named plan as delivered by a client or parsed from CSV.
type PlanInput struct {
	Name string                   `json:"name"`
	Rows []workout.ExerciseSetRow `json:"rows"`
}

// PlanDetail is a stored plan with its planned sets.
type PlanDetail struct {
	PlanRow
	Rows []workout.ExerciseSetRow `json:"rows"`
}

// BlockOverview describes one block of a plan overview.
type BlockOverview struct {
	Index        int                            `json:"index"`
	Type         workout.BlockType              `json:"type"`
	OrderIndex   int                            `json:"order_index"`
	Rounds       int                            `json:"rounds"`
	Consolidated []workout.ConsolidatedExercise `json:"consolidated"`
}

// PlanOverview is a plan grouped into blocks with its rendered overview text.
type PlanOverview struct {
	Plan     PlanRow         `json:"plan"`
	Overview string          `json:"overview"`
	Blocks   []BlockOverview `json:"blocks"`
}

// NewPlanOverview groups a plan's rows and renders its overview.
func NewPlanOverview(p PlanRow, rows []workout.ExerciseSetRow) PlanOverview {
	blocks := workout.Group(rows)
	out := PlanOverview{Plan: p, Overview: workout.Overview(blocks), Blocks: []BlockOverview{}}
	for _, b := range blocks {
		out.Blocks = append(out.Blocks, BlockOverview{
			Index:        b.Index,
			Type:         b.Type,
			OrderIndex:   b.OrderIndex,
			Rounds:       b.Rounds(),
			Consolidated: workout.Consolidate(b),
		})
	}
	return out
}
