package models

import "time"

// BodyStatsRecord is one point in a user's append-only body measurement
// series. Records are never overwritten; the latest record by date is the
// current value.
type BodyStatsRecord struct {
	UserID       int       `json:"user_id"`
	Date         time.Time `json:"date"`
	WeightKg     float64   `json:"weight_kg"`
	BodyFatPct   *float64  `json:"body_fat_pct,omitempty"`
	MuscleMassKg *float64  `json:"muscle_mass_kg,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	RecordedAt   time.Time `json:"recorded_at"`
}
