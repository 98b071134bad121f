package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meltforce/fitforge/internal/models"
)

const uniqueViolation = "23505"

// CreateSession inserts a new active session and claims the user's
// active-session slot in the same transaction. The claim is a compare-and-set
// on users.active_session_id, so two concurrent starts for the same user
// cannot both succeed. Returns models.ErrSessionConflict when the slot is
// already taken.
func (db *DB) CreateSession(ctx context.Context, s *models.Session) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return &models.StorageError{Op: "begin create session", Err: err}
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workout_sessions (id, user_id, status, started_at, notes, planned_exercises)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.Status, s.StartedAt, s.Notes, s.PlannedExercises)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// Partial unique index on (user_id) WHERE status='active'.
			return models.ErrSessionConflict
		}
		return &models.StorageError{Op: "insert session", Err: err}
	}

	tag, err := tx.Exec(ctx,
		`UPDATE users SET active_session_id = $1
		 WHERE id = $2 AND active_session_id IS NULL`,
		s.ID, s.UserID)
	if err != nil {
		return &models.StorageError{Op: "claim active session", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return models.ErrSessionConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return &models.StorageError{Op: "commit create session", Err: err}
	}
	return nil
}

// GetSession retrieves a session with its sets, ordered by exercise and set
// number rather than arrival time, so late-synced sets read back in order.
func (db *DB) GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, status, started_at, ended_at, rating, notes, planned_exercises, total_volume_kg, duration_sec
		 FROM workout_sessions
		 WHERE id = $1`,
		sessionID)

	var s models.Session
	err := row.Scan(&s.ID, &s.UserID, &s.Status, &s.StartedAt, &s.EndedAt,
		&s.Rating, &s.Notes, &s.PlannedExercises, &s.TotalVolumeKg, &s.DurationSec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT session_id, exercise_id, set_number, weight_kg, reps, target_reps, rpe, equipment, volume_kg, logged_at
		 FROM session_sets
		 WHERE session_id = $1
		 ORDER BY exercise_id ASC, set_number ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session sets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.SetEntry
		if err := rows.Scan(&e.SessionID, &e.ExerciseID, &e.SetNumber, &e.WeightKg,
			&e.Reps, &e.TargetReps, &e.RPE, &e.Equipment, &e.VolumeKg, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning session set: %w", err)
		}
		s.Sets = append(s.Sets, e)
	}
	return &s, rows.Err()
}

// QuerySessions retrieves session summaries (no sets) in a time range.
func (db *DB) QuerySessions(ctx context.Context, start, end time.Time, userID int) ([]models.Session, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, status, started_at, ended_at, rating, notes, planned_exercises, total_volume_kg, duration_sec
		 FROM workout_sessions
		 WHERE started_at >= $1 AND started_at < $2 AND user_id = $3
		 ORDER BY started_at DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Status, &s.StartedAt, &s.EndedAt,
			&s.Rating, &s.Notes, &s.PlannedExercises, &s.TotalVolumeKg, &s.DurationSec); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// FinishSession moves an active session to a terminal status and releases the
// user's active-session slot. Returns false without error when the session was
// not active, so callers can distinguish a lost race from a failure.
func (db *DB) FinishSession(ctx context.Context, s *models.Session) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, &models.StorageError{Op: "begin finish session", Err: err}
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE workout_sessions
		 SET status = $2, ended_at = $3, rating = $4, notes = $5, total_volume_kg = $6, duration_sec = $7
		 WHERE id = $1 AND status = 'active'`,
		s.ID, s.Status, s.EndedAt, s.Rating, s.Notes, s.TotalVolumeKg, s.DurationSec)
	if err != nil {
		return false, &models.StorageError{Op: "finish session", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET active_session_id = NULL
		 WHERE id = $1 AND active_session_id = $2`,
		s.UserID, s.ID)
	if err != nil {
		return false, &models.StorageError{Op: "release active session", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, &models.StorageError{Op: "commit finish session", Err: err}
	}
	return true, nil
}

// CompletedSessions retrieves all completed sessions for a user with their
// sets, oldest first. Used by the export surface.
func (db *DB) CompletedSessions(ctx context.Context, userID int) ([]models.Session, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, status, started_at, ended_at, rating, notes, planned_exercises, total_volume_kg, duration_sec
		 FROM workout_sessions
		 WHERE user_id = $1 AND status = 'completed'
		 ORDER BY started_at ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying completed sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.Status, &s.StartedAt, &s.EndedAt,
			&s.Rating, &s.Notes, &s.PlannedExercises, &s.TotalVolumeKg, &s.DurationSec); err != nil {
			return nil, fmt.Errorf("scanning completed session: %w", err)
		}
		index[s.ID] = len(sessions)
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	setRows, err := db.Pool.Query(ctx,
		`SELECT st.session_id, st.exercise_id, st.set_number, st.weight_kg, st.reps,
		        st.target_reps, st.rpe, st.equipment, st.volume_kg, st.logged_at
		 FROM session_sets st
		 JOIN workout_sessions s ON s.id = st.session_id
		 WHERE s.user_id = $1 AND s.status = 'completed'
		 ORDER BY st.session_id, st.exercise_id ASC, st.set_number ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying completed session sets: %w", err)
	}
	defer setRows.Close()

	for setRows.Next() {
		var e models.SetEntry
		if err := setRows.Scan(&e.SessionID, &e.ExerciseID, &e.SetNumber, &e.WeightKg,
			&e.Reps, &e.TargetReps, &e.RPE, &e.Equipment, &e.VolumeKg, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning completed session set: %w", err)
		}
		if i, ok := index[e.SessionID]; ok {
			sessions[i].Sets = append(sessions[i].Sets, e)
		}
	}
	return sessions, setRows.Err()
}

// ImportCompletedSession inserts an already-completed session and its sets
// in one transaction, bypassing the active-session machinery. Used by the
// import CLI to restore history from an export. Idempotent: a session ID that
// already exists is skipped entirely.
func (db *DB) ImportCompletedSession(ctx context.Context, s *models.Session) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, &models.StorageError{Op: "begin import session", Err: err}
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO workout_sessions (id, user_id, status, started_at, ended_at, rating, notes, total_volume_kg, duration_sec)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		s.ID, s.UserID, models.StatusCompleted, s.StartedAt, s.EndedAt,
		s.Rating, s.Notes, s.TotalVolumeKg, s.DurationSec)
	if err != nil {
		return false, &models.StorageError{Op: "import session", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	for _, e := range s.Sets {
		_, err := tx.Exec(ctx,
			`INSERT INTO session_sets (session_id, exercise_id, set_number, weight_kg, reps, target_reps, rpe, equipment, volume_kg, logged_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			s.ID, e.ExerciseID, e.SetNumber, e.WeightKg, e.Reps,
			e.TargetReps, e.RPE, e.Equipment, e.VolumeKg, e.LoggedAt)
		if err != nil {
			return false, &models.StorageError{Op: "import session set", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, &models.StorageError{Op: "commit import session", Err: err}
	}
	return true, nil
}
