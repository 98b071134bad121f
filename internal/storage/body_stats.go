package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/meltforce/fitforge/internal/models"
)

// InsertBodyStats appends one body stats record. The series is append-only;
// a new measurement for the same date is a new row, never an overwrite.
func (db *DB) InsertBodyStats(ctx context.Context, r models.BodyStatsRecord) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO body_stats (user_id, date, weight_kg, body_fat_pct, muscle_mass_kg, notes, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.UserID, r.Date, r.WeightKg, r.BodyFatPct, r.MuscleMassKg, r.Notes, r.RecordedAt)
	if err != nil {
		return &models.StorageError{Op: "insert body stats", Err: err}
	}
	return nil
}

// LatestBodyStats returns the most recent record by date (ties broken by
// recording time). Returns models.ErrNotFound when the user has none.
func (db *DB) LatestBodyStats(ctx context.Context, userID int) (*models.BodyStatsRecord, error) {
	var r models.BodyStatsRecord
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, date, weight_kg, body_fat_pct, muscle_mass_kg, notes, recorded_at
		 FROM body_stats
		 WHERE user_id = $1
		 ORDER BY date DESC, recorded_at DESC
		 LIMIT 1`,
		userID).Scan(&r.UserID, &r.Date, &r.WeightKg, &r.BodyFatPct, &r.MuscleMassKg, &r.Notes, &r.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest body stats: %w", err)
	}
	return &r, nil
}

// QueryBodyStats retrieves records in a date range, newest first.
func (db *DB) QueryBodyStats(ctx context.Context, start, end time.Time, userID int) ([]models.BodyStatsRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, date, weight_kg, body_fat_pct, muscle_mass_kg, notes, recorded_at
		 FROM body_stats
		 WHERE date >= $1 AND date < $2 AND user_id = $3
		 ORDER BY date DESC, recorded_at DESC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying body stats: %w", err)
	}
	defer rows.Close()

	var result []models.BodyStatsRecord
	for rows.Next() {
		var r models.BodyStatsRecord
		if err := rows.Scan(&r.UserID, &r.Date, &r.WeightKg, &r.BodyFatPct, &r.MuscleMassKg, &r.Notes, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning body stats: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
