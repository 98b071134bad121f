package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a workout session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
	StatusAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether the status admits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Session is one workout occasion: started once, sets appended while active,
// then completed or abandoned. A user has at most one active session at a time;
// the storage layer enforces that with a compare-and-set on the user row.
type Session struct {
	ID               uuid.UUID     `json:"id"`
	UserID           int           `json:"user_id"`
	Status           SessionStatus `json:"status"`
	StartedAt        time.Time     `json:"started_at"`
	EndedAt          *time.Time    `json:"ended_at,omitempty"`
	Rating           *int          `json:"rating,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	PlannedExercises []string      `json:"planned_exercises,omitempty"`
	TotalVolumeKg    float64       `json:"total_volume_kg"`
	DurationSec      int           `json:"duration_sec"`
	Sets             []SetEntry    `json:"sets"`
}

// Volume sums the volume of every logged set.
func (s *Session) Volume() float64 {
	var total float64
	for _, set := range s.Sets {
		total += set.VolumeKg
	}
	return total
}

// SetEntry is one logged performance of an exercise within a session.
// Entries are append-only: a correction is a delete plus a re-log, never an
// in-place edit.
type SetEntry struct {
	SessionID  uuid.UUID `json:"session_id"`
	ExerciseID string    `json:"exercise_id"`
	SetNumber  int       `json:"set_number"`
	WeightKg   float64   `json:"weight_kg"`
	Reps       int       `json:"reps"`
	TargetReps *int      `json:"target_reps,omitempty"`
	RPE        *float64  `json:"rpe,omitempty"`
	Equipment  string    `json:"equipment,omitempty"`
	VolumeKg   float64   `json:"volume_kg"`
	LoggedAt   time.Time `json:"logged_at"`
}
