package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meltforce/fitforge/internal/models"
)

// InsertSet appends one set entry. The primary key on (session_id,
// exercise_id, set_number) rejects a duplicate set number, which surfaces as
// a ValidationError so the caller can re-number instead of retrying blindly.
func (db *DB) InsertSet(ctx context.Context, e models.SetEntry) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO session_sets (session_id, exercise_id, set_number, weight_kg, reps, target_reps, rpe, equipment, volume_kg, logged_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.SessionID, e.ExerciseID, e.SetNumber, e.WeightKg, e.Reps,
		e.TargetReps, e.RPE, e.Equipment, e.VolumeKg, e.LoggedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &models.ValidationError{
				Field:  "set_number",
				Reason: fmt.Sprintf("set %d already logged for %s in this session", e.SetNumber, e.ExerciseID),
			}
		}
		return &models.StorageError{Op: "insert set", Err: err}
	}
	return nil
}

// DeleteSet removes one set entry. Corrections are delete-then-relog; there
// is deliberately no in-place update.
func (db *DB) DeleteSet(ctx context.Context, sessionID uuid.UUID, exerciseID string, setNumber int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM session_sets
		 WHERE session_id = $1 AND exercise_id = $2 AND set_number = $3`,
		sessionID, exerciseID, setNumber)
	if err != nil {
		return &models.StorageError{Op: "delete set", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// RefreshSessionVolume recomputes the running session volume from the stored
// sets in a single statement, so a crash between a set write and the volume
// update can never leave a stale total. Returns the new total.
func (db *DB) RefreshSessionVolume(ctx context.Context, sessionID uuid.UUID) (float64, error) {
	var total float64
	err := db.Pool.QueryRow(ctx,
		`UPDATE workout_sessions
		 SET total_volume_kg = COALESCE(
			(SELECT SUM(volume_kg) FROM session_sets WHERE session_id = $1), 0)
		 WHERE id = $1
		 RETURNING total_volume_kg`,
		sessionID).Scan(&total)
	if err != nil {
		return 0, &models.StorageError{Op: "refresh session volume", Err: err}
	}
	return total, nil
}

// LastCompletedSets returns the sets for an exercise from the user's most
// recent completed session that contains that exercise, ordered by set number.
// An empty slice means no history.
func (db *DB) LastCompletedSets(ctx context.Context, userID int, exerciseID string) ([]models.SetEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT st.session_id, st.exercise_id, st.set_number, st.weight_kg, st.reps,
		        st.target_reps, st.rpe, st.equipment, st.volume_kg, st.logged_at
		 FROM session_sets st
		 JOIN workout_sessions s ON s.id = st.session_id
		 WHERE s.user_id = $1 AND s.status = 'completed' AND st.exercise_id = $2
		   AND s.id = (
			SELECT s2.id FROM workout_sessions s2
			JOIN session_sets st2 ON st2.session_id = s2.id
			WHERE s2.user_id = $1 AND s2.status = 'completed' AND st2.exercise_id = $2
			ORDER BY s2.started_at DESC
			LIMIT 1
		   )
		 ORDER BY st.set_number ASC`,
		userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying last completed sets: %w", err)
	}
	defer rows.Close()

	var result []models.SetEntry
	for rows.Next() {
		var e models.SetEntry
		if err := rows.Scan(&e.SessionID, &e.ExerciseID, &e.SetNumber, &e.WeightKg,
			&e.Reps, &e.TargetReps, &e.RPE, &e.Equipment, &e.VolumeKg, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning last completed set: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
