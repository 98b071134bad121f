package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about a user's stored training data.
type DataStats struct {
	TotalSessions     int64               `json:"total_sessions"`
	CompletedSessions int64               `json:"completed_sessions"`
	AbandonedSessions int64               `json:"abandoned_sessions"`
	TotalSets         int64               `json:"total_sets"`
	TotalReps         int64               `json:"total_reps"`
	TotalTonnageKg    float64             `json:"total_tonnage_kg"`
	BodyStatsRecords  int64               `json:"body_stats_records"`
	EarliestSession   *time.Time          `json:"earliest_session"`
	LatestSession     *time.Time          `json:"latest_session"`
	TopExercises      []ExerciseStat      `json:"top_exercises"`
}

// ExerciseStat holds summary stats for a single exercise.
type ExerciseStat struct {
	ExerciseID string  `json:"exercise_id"`
	Sets       int64   `json:"sets"`
	Reps       int64   `json:"reps"`
	TonnageKg  float64 `json:"tonnage_kg"`
	MaxWeight  float64 `json:"max_weight_kg"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'completed'),
		        COUNT(*) FILTER (WHERE status = 'abandoned'),
		        MIN(started_at), MAX(started_at)
		 FROM workout_sessions WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions, &stats.CompletedSessions, &stats.AbandonedSessions,
		&stats.EarliestSession, &stats.LatestSession)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(st.reps), 0), COALESCE(SUM(st.volume_kg), 0)
		 FROM session_sets st
		 JOIN workout_sessions s ON s.id = st.session_id
		 WHERE s.user_id = $1`, userID,
	).Scan(&stats.TotalSets, &stats.TotalReps, &stats.TotalTonnageKg)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM body_stats WHERE user_id = $1`, userID,
	).Scan(&stats.BodyStatsRecords)
	if err != nil {
		return nil, fmt.Errorf("counting body stats: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT st.exercise_id, COUNT(*), COALESCE(SUM(st.reps), 0),
		        COALESCE(SUM(st.volume_kg), 0), COALESCE(MAX(st.weight_kg), 0)
		 FROM session_sets st
		 JOIN workout_sessions s ON s.id = st.session_id
		 WHERE s.user_id = $1 AND s.status = 'completed'
		 GROUP BY st.exercise_id
		 ORDER BY SUM(st.volume_kg) DESC
		 LIMIT 10`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying top exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e ExerciseStat
		if err := rows.Scan(&e.ExerciseID, &e.Sets, &e.Reps, &e.TonnageKg, &e.MaxWeight); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		stats.TopExercises = append(stats.TopExercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
