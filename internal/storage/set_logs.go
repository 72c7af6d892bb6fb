package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/repcoach/internal/models"
)

// InsertSetLog batch-inserts the completed sets of a session. Returns count inserted.
// Re-sending the same session is a no-op.
func (db *DB) InsertSetLog(ctx context.Context, rows []models.SetLogRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO set_logs (session_id, seq, user_id, plan_id, exercise_id,
		exercise_name, set_number, weight, reps, notes, logged_at) VALUES `
	args := make([]any, 0, len(rows)*11)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 11
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11,
		))
		args = append(args, r.SessionID, r.Seq, r.UserID, r.PlanID, r.ExerciseID,
			r.ExerciseName, r.SetNumber, r.Weight, r.Reps, r.Notes, r.LoggedAt)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting set log: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QuerySetLogs retrieves logged sets in a time range, optionally filtered by
// exercise name (case-insensitive partial match).
func (db *DB) QuerySetLogs(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.SetLogRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT session_id, seq, user_id, plan_id, exercise_id, exercise_name,
		 set_number, weight, reps, notes, logged_at
		 FROM set_logs
		 WHERE logged_at >= $1 AND logged_at < $2 AND user_id = $3
		   AND ($4::text = '' OR exercise_name ILIKE '%' || $4::text || '%')
		 ORDER BY logged_at DESC, session_id, seq ASC`,
		start, end, userID, exerciseFilter)
	if err != nil {
		return nil, fmt.Errorf("querying set logs: %w", err)
	}
	defer rows.Close()

	var result []models.SetLogRow
	for rows.Next() {
		var r models.SetLogRow
		if err := rows.Scan(&r.SessionID, &r.Seq, &r.UserID, &r.PlanID, &r.ExerciseID,
			&r.ExerciseName, &r.SetNumber, &r.Weight, &r.Reps, &r.Notes, &r.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning set log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
