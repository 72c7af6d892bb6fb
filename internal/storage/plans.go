package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/workout"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrPlanNotFound is returned when a plan does not exist for the user.
var ErrPlanNotFound = errors.New("plan not found")

// InsertPlan stores a plan and its planned sets in one transaction.
func (db *DB) InsertPlan(ctx context.Context, userID int, name string, rows []workout.ExerciseSetRow) (uuid.UUID, error) {
	id := uuid.New()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning plan insert: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO plans (id, user_id, name) VALUES ($1, $2, $3)`,
		id, userID, name); err != nil {
		return uuid.Nil, fmt.Errorf("inserting plan: %w", err)
	}

	if len(rows) > 0 {
		query := `INSERT INTO plan_sets (plan_id, position, exercise_id, exercise_name,
			block_type, order_index, set_number, reps, muscles) VALUES `
		args := make([]any, 0, len(rows)*9)
		valueStrings := make([]string, 0, len(rows))

		for i, r := range rows {
			p := models.NewPlanSetRow(id, i, r)
			base := i * 9
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
			))
			args = append(args, p.PlanID, p.Position, p.ExerciseID, p.ExerciseName,
				p.BlockType, p.OrderIndex, p.SetNumber, p.Reps, p.Muscles)
		}

		query += strings.Join(valueStrings, ",")
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return uuid.Nil, fmt.Errorf("inserting plan sets: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing plan: %w", err)
	}
	return id, nil
}

// GetPlan returns a plan and its planned sets in their original order.
func (db *DB) GetPlan(ctx context.Context, planID uuid.UUID, userID int) (*models.PlanRow, []workout.ExerciseSetRow, error) {
	var plan models.PlanRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at FROM plans WHERE id = $1 AND user_id = $2`,
		planID, userID).Scan(&plan.ID, &plan.UserID, &plan.Name, &plan.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("querying plan: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT plan_id, position, exercise_id, exercise_name, block_type, order_index,
		 set_number, reps, muscles
		 FROM plan_sets WHERE plan_id = $1 ORDER BY position ASC`, planID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying plan sets: %w", err)
	}
	defer rows.Close()

	var sets []workout.ExerciseSetRow
	for rows.Next() {
		var p models.PlanSetRow
		if err := rows.Scan(&p.PlanID, &p.Position, &p.ExerciseID, &p.ExerciseName,
			&p.BlockType, &p.OrderIndex, &p.SetNumber, &p.Reps, &p.Muscles); err != nil {
			return nil, nil, fmt.Errorf("scanning plan set: %w", err)
		}
		sets = append(sets, p.ExerciseSetRow())
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading plan sets: %w", err)
	}
	plan.SetCount = len(sets)
	return &plan, sets, nil
}

// ListPlans returns the user's plans, newest first.
func (db *DB) ListPlans(ctx context.Context, userID int) ([]models.PlanRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT p.id, p.user_id, p.name, p.created_at, COUNT(s.position)
		 FROM plans p LEFT JOIN plan_sets s ON s.plan_id = p.id
		 WHERE p.user_id = $1
		 GROUP BY p.id
		 ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer rows.Close()

	var result []models.PlanRow
	for rows.Next() {
		var p models.PlanRow
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt, &p.SetCount); err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
