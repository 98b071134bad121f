package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/fitforge/internal/models"
)

// PersonalRecordRow is the best weight×reps set for one exercise. Derived
// from session history on every call; never stored, so it cannot drift from
// the source rows.
type PersonalRecordRow struct {
	ExerciseID string    `json:"exercise_id"`
	WeightKg   float64   `json:"weight_kg"`
	Reps       int       `json:"reps"`
	VolumeKg   float64   `json:"volume_kg"`
	Date       time.Time `json:"date"`
}

// DayVolume is total set volume attributed to one calendar day.
type DayVolume struct {
	Day      time.Time `json:"day"`
	VolumeKg float64   `json:"volume_kg"`
}

// MuscleSession is the most recent completed session engaging a muscle,
// with the session's mean logged RPE for sets hitting that muscle.
type MuscleSession struct {
	Muscle  string
	EndedAt time.Time
	AvgRPE  *float64
}

// PersonalRecord returns the completed set maximizing weight×reps for the
// exercise, ties broken by most recent. Returns models.ErrNotFound when no
// completed history exists.
func (db *DB) PersonalRecord(ctx context.Context, userID int, exerciseID string) (*PersonalRecordRow, error) {
	var pr PersonalRecordRow
	err := db.Pool.QueryRow(ctx,
		`SELECT st.exercise_id, st.weight_kg, st.reps, st.volume_kg, st.logged_at
		 FROM session_sets st
		 JOIN workout_sessions s ON s.id = st.session_id
		 WHERE s.user_id = $1 AND s.status = 'completed' AND st.exercise_id = $2
		 ORDER BY st.volume_kg DESC, st.logged_at DESC
		 LIMIT 1`,
		userID, exerciseID).Scan(&pr.ExerciseID, &pr.WeightKg, &pr.Reps, &pr.VolumeKg, &pr.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying personal record: %w", err)
	}
	return &pr, nil
}

// VolumeByDay sums completed-session set volume per UTC calendar day in the
// range. Truncation happens on the UTC clock regardless of the database
// session time zone, so the buckets line up with the aggregator's UTC day
// grid. Days without sets are absent here; the aggregator zero-fills them.
func (db *DB) VolumeByDay(ctx context.Context, start, end time.Time, userID int) ([]DayVolume, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc('day', s.started_at AT TIME ZONE 'UTC') AS day, COALESCE(SUM(st.volume_kg), 0)
		 FROM workout_sessions s
		 JOIN session_sets st ON st.session_id = s.id
		 WHERE s.user_id = $1 AND s.status = 'completed'
		   AND s.started_at >= $2 AND s.started_at < $3
		 GROUP BY day
		 ORDER BY day ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying volume by day: %w", err)
	}
	defer rows.Close()

	var result []DayVolume
	for rows.Next() {
		var d DayVolume
		if err := rows.Scan(&d.Day, &d.VolumeKg); err != nil {
			return nil, fmt.Errorf("scanning day volume: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// MuscleLastTrained returns, per muscle, the end time and mean RPE of the
// most recent completed session containing an exercise engaging it.
func (db *DB) MuscleLastTrained(ctx context.Context, userID int) ([]MuscleSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT muscle, ended_at, avg_rpe FROM (
			SELECT em.muscle, s.ended_at, AVG(st.rpe) AS avg_rpe,
			       ROW_NUMBER() OVER (PARTITION BY em.muscle ORDER BY s.ended_at DESC) AS rn
			FROM session_sets st
			JOIN exercise_muscles em ON em.exercise_id = st.exercise_id
			JOIN workout_sessions s ON s.id = st.session_id
			WHERE s.user_id = $1 AND s.status = 'completed' AND s.ended_at IS NOT NULL
			GROUP BY em.muscle, s.id, s.ended_at
		 ) sub
		 WHERE rn = 1
		 ORDER BY muscle ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying muscle last trained: %w", err)
	}
	defer rows.Close()

	var result []MuscleSession
	for rows.Next() {
		var m MuscleSession
		if err := rows.Scan(&m.Muscle, &m.EndedAt, &m.AvgRPE); err != nil {
			return nil, fmt.Errorf("scanning muscle session: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
