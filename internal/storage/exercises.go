package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/fitforge/internal/models"
)

// GetExercise retrieves one exercise with its muscle engagement rows.
func (db *DB) GetExercise(ctx context.Context, exerciseID string) (models.Exercise, error) {
	var e models.Exercise
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, equipment, movement_pattern, difficulty
		 FROM exercises WHERE id = $1`,
		exerciseID).Scan(&e.ID, &e.Name, &e.Equipment, &e.MovementPattern, &e.Difficulty)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Exercise{}, models.ErrNotFound
	}
	if err != nil {
		return models.Exercise{}, fmt.Errorf("querying exercise: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT muscle, percentage FROM exercise_muscles
		 WHERE exercise_id = $1
		 ORDER BY percentage DESC, muscle ASC`,
		exerciseID)
	if err != nil {
		return models.Exercise{}, fmt.Errorf("querying exercise muscles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.MuscleEngagement
		if err := rows.Scan(&m.Muscle, &m.Percentage); err != nil {
			return models.Exercise{}, fmt.Errorf("scanning exercise muscle: %w", err)
		}
		e.Muscles = append(e.Muscles, m)
	}
	return e, rows.Err()
}

// ListExercises retrieves the full catalog with muscle engagement.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, equipment, movement_pattern, difficulty
		 FROM exercises ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	index := make(map[string]int)
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Equipment, &e.MovementPattern, &e.Difficulty); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		index[e.ID] = len(exercises)
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	muscleRows, err := db.Pool.Query(ctx,
		`SELECT exercise_id, muscle, percentage FROM exercise_muscles
		 ORDER BY exercise_id, percentage DESC, muscle ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercise muscles: %w", err)
	}
	defer muscleRows.Close()

	for muscleRows.Next() {
		var id string
		var m models.MuscleEngagement
		if err := muscleRows.Scan(&id, &m.Muscle, &m.Percentage); err != nil {
			return nil, fmt.Errorf("scanning exercise muscle: %w", err)
		}
		if i, ok := index[id]; ok {
			exercises[i].Muscles = append(exercises[i].Muscles, m)
		}
	}
	return exercises, muscleRows.Err()
}
