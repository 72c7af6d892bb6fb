package models

import (
	"time"

	"github.com/claude/repcoach/internal/workout"
	"github.com/google/uuid"
)

// SetLogRow is a row for the set_logs table.
type SetLogRow struct {
	SessionID    uuid.UUID  `json:"session_id"`
	Seq          int        `json:"seq"`
	UserID       int        `json:"user_id"`
	PlanID       *uuid.UUID `json:"plan_id,omitempty"`
	ExerciseID   string     `json:"exercise_id"`
	ExerciseName string     `json:"exercise_name"`
	SetNumber    int        `json:"set_number"`
	Weight       string     `json:"weight"`
	Reps         string     `json:"reps"`
	Notes        string     `json:"notes"`
	LoggedAt     time.Time  `json:"logged_at"`
}

// FinishedSession is the complete set log of one session, as handed to
// persistence once the workout is exhausted.
type FinishedSession struct {
	SessionID  uuid.UUID           `json:"session_id"`
	PlanID     *uuid.UUID          `json:"plan_id,omitempty"`
	PlanName   string              `json:"plan_name,omitempty"`
	FinishedAt time.Time           `json:"finished_at"`
	Sets       []workout.LoggedSet `json:"sets"`
}

// Rows flattens a finished session into set_logs rows for a user.
func (f FinishedSession) Rows(userID int) []SetLogRow {
	rows := make([]SetLogRow, 0, len(f.Sets))
	for i, s := range f.Sets {
		rows = append(rows, SetLogRow{
			SessionID:    f.SessionID,
			Seq:          i + 1,
			UserID:       userID,
			PlanID:       f.PlanID,
			ExerciseID:   s.ExerciseID,
			ExerciseName: s.ExerciseName,
			SetNumber:    s.SetNumber,
			Weight:       s.Weight,
			Reps:         s.Reps,
			Notes:        s.Notes,
			LoggedAt:     f.FinishedAt,
		})
	}
	return rows
}
