package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's plans and logged sets.
type DataStats struct {
	TotalPlans    int64          `json:"total_plans"`
	TotalSessions int64          `json:"total_sessions"`
	TotalSets     int64          `json:"total_sets"`
	EarliestLog   *time.Time     `json:"earliest_log"`
	LatestLog     *time.Time     `json:"latest_log"`
	TopExercises  []ExerciseStat `json:"top_exercises"`
}

// ExerciseStat holds summary stats for a single exercise.
type ExerciseStat struct {
	Name     string `json:"name"`
	Sets     int64  `json:"sets"`
	Sessions int64  `json:"sessions"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{TopExercises: []ExerciseStat{}}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM plans WHERE user_id = $1`, userID,
	).Scan(&stats.TotalPlans)
	if err != nil {
		return nil, fmt.Errorf("counting plans: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT session_id), COUNT(*), MIN(logged_at), MAX(logged_at)
		 FROM set_logs WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions, &stats.TotalSets, &stats.EarliestLog, &stats.LatestLog)
	if err != nil {
		return nil, fmt.Errorf("counting set logs: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_name, COUNT(*), COUNT(DISTINCT session_id)
		 FROM set_logs
		 WHERE user_id = $1
		 GROUP BY exercise_name
		 ORDER BY COUNT(*) DESC, exercise_name
		 LIMIT 10`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Name, &s.Sets, &s.Sessions); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
