package models

import (
	"testing"
	"time"

	"github.com/claude/repcoach/internal/workout"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// TestFinishedSessionRows verifies that rows are numbered in log order and
// carry the session's plan and finish time.
func TestFinishedSessionRows(t *testing.T) {
	planID := uuid.New()
	at := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	fs := FinishedSession{
		SessionID:  uuid.New(),
		PlanID:     &planID,
		FinishedAt: at,
		Sets: []workout.LoggedSet{
			{ExerciseID: "squat", ExerciseName: "Squat", SetNumber: 1, Weight: "100", Reps: "10"},
			{ExerciseID: "squat", ExerciseName: "Squat", SetNumber: 2, Weight: "100", Reps: "8", Notes: "last rep slow"},
		},
	}

	rows := fs.Rows(3)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for i, r := range rows {
		if r.Seq != i+1 {
			t.Errorf("row %d seq = %d, want %d", i, r.Seq, i+1)
		}
		if r.UserID != 3 || r.SessionID != fs.SessionID || r.PlanID != &planID || !r.LoggedAt.Equal(at) {
			t.Errorf("row %d = %+v, want user 3 and the session's ids and time", i, r)
		}
	}
	if rows[1].Notes != "last rep slow" || rows[1].Reps != "8" {
		t.Errorf("second row = %+v", rows[1])
	}
}

// TestNewPlanOverview verifies the block summary next to the overview text.
func TestNewPlanOverview(t *testing.T) {
	order := 1
	rows := []workout.ExerciseSetRow{
		{ExerciseName: "Squat", BlockType: workout.BlockNormal, SetNumber: 1, Reps: "10"},
		{ExerciseName: "Squat", BlockType: workout.BlockNormal, SetNumber: 2, Reps: "10"},
		{ExerciseName: "Lunge", BlockType: workout.BlockSuperset, OrderIndex: &order, SetNumber: 1, Reps: "12"},
		{ExerciseName: "RDL", BlockType: workout.BlockSuperset, OrderIndex: &order, SetNumber: 1, Reps: "12"},
	}

	got := NewPlanOverview(PlanRow{Name: "Leg Day"}, rows)

	want := "1) 2x10 Squat\n2) 1x12 SUPERSET:\n    a) Lunge\n    b) RDL"
	if got.Overview != want {
		t.Errorf("overview = %q, want %q", got.Overview, want)
	}
	if len(got.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(got.Blocks))
	}
	if b := got.Blocks[1]; b.Type != workout.BlockSuperset || b.OrderIndex != 1 || b.Rounds != 1 {
		t.Errorf("superset block = %+v", b)
	}
	wantSquat := []workout.ConsolidatedExercise{{ExerciseName: "Squat", Reps: "10", SetNumbers: []int{1, 2}}}
	if diff := cmp.Diff(wantSquat, got.Blocks[0].Consolidated); diff != "" {
		t.Errorf("squat consolidation mismatch (-want +got):\n%s", diff)
	}
}
