// Package workout owns the session lifecycle: start, log sets, complete or
// abandon. It enforces the one-active-session-per-user invariant through the
// store's compare-and-set and persists every mutation before acknowledging it.
package workout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/fitforge/internal/models"
)

// Manager drives the session state machine: none → active → completed or
// abandoned. Terminal sessions are immutable.
type Manager struct {
	store   Store
	catalog Catalog
	now     func() time.Time
}

// NewManager creates a Manager backed by the given store and catalog.
func NewManager(store Store, catalog Catalog) *Manager {
	return &Manager{store: store, catalog: catalog, now: time.Now}
}

// SetInput is the caller-supplied data for one logged set.
type SetInput struct {
	ExerciseID string   `json:"exercise_id"`
	SetNumber  int      `json:"set_number"`
	WeightKg   *float64 `json:"weight_kg"`
	Reps       int      `json:"reps"`
	TargetReps *int     `json:"target_reps,omitempty"`
	RPE        *float64 `json:"rpe,omitempty"`
	Equipment  string   `json:"equipment,omitempty"`
}

// Start creates a new active session for the user, optionally recording the
// exercises planned for it. Every planned exercise must exist in the catalog.
// Fails with models.ErrSessionConflict when an active session exists: the
// caller must complete or abandon it first, so in-progress data is never
// silently lost.
func (m *Manager) Start(ctx context.Context, userID int, notes string, planned []string) (*models.Session, error) {
	for _, id := range planned {
		if _, err := m.catalog.Exercise(ctx, id); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, &models.ValidationError{Field: "planned_exercises", Reason: "unknown exercise " + id}
			}
			return nil, err
		}
	}
	s := &models.Session{
		ID:               uuid.New(),
		UserID:           userID,
		Status:           models.StatusActive,
		StartedAt:        m.now().UTC(),
		Notes:            notes,
		PlannedExercises: append([]string{}, planned...),
		Sets:             []models.SetEntry{},
	}
	if err := m.store.CreateSession(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// LogSet validates and appends one set to an active session. For bodyweight
// exercises with no explicit weight, the weight comes from the user's latest
// body stats record; models.ErrMissingBodyWeight signals the caller to prompt
// for one. The set is durably stored and the running session volume updated
// before the entry is returned.
func (m *Manager) LogSet(ctx context.Context, sessionID uuid.UUID, in SetInput) (*models.SetEntry, error) {
	s, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != models.StatusActive {
		return nil, models.ErrNotFound
	}

	if in.SetNumber < 1 {
		return nil, &models.ValidationError{Field: "set_number", Reason: "must be at least 1"}
	}
	if in.Reps <= 0 {
		return nil, &models.ValidationError{Field: "reps", Reason: "must be positive"}
	}
	if in.WeightKg != nil && *in.WeightKg < 0 {
		return nil, &models.ValidationError{Field: "weight_kg", Reason: "must not be negative"}
	}
	for _, existing := range s.Sets {
		if existing.ExerciseID == in.ExerciseID && existing.SetNumber == in.SetNumber {
			return nil, &models.ValidationError{
				Field:  "set_number",
				Reason: fmt.Sprintf("set %d already logged for %s in this session", in.SetNumber, in.ExerciseID),
			}
		}
	}

	ex, err := m.catalog.Exercise(ctx, in.ExerciseID)
	if err != nil {
		return nil, err
	}

	weight, err := m.resolveWeight(ctx, s.UserID, ex, in.WeightKg)
	if err != nil {
		return nil, err
	}

	equipment := in.Equipment
	if equipment == "" {
		equipment = ex.Equipment
	}

	entry := models.SetEntry{
		SessionID:  sessionID,
		ExerciseID: in.ExerciseID,
		SetNumber:  in.SetNumber,
		WeightKg:   weight,
		Reps:       in.Reps,
		TargetReps: in.TargetReps,
		RPE:        in.RPE,
		Equipment:  equipment,
		VolumeKg:   weight * float64(in.Reps),
		LoggedAt:   m.now().UTC(),
	}

	if err := m.store.InsertSet(ctx, entry); err != nil {
		return nil, err
	}
	if _, err := m.store.RefreshSessionVolume(ctx, sessionID); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteSet removes a logged set so it can be re-logged with corrected
// values. Only allowed while the session is active.
func (m *Manager) DeleteSet(ctx context.Context, sessionID uuid.UUID, exerciseID string, setNumber int) error {
	s, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.Status != models.StatusActive {
		return models.ErrNotFound
	}
	if err := m.store.DeleteSet(ctx, sessionID, exerciseID, setNumber); err != nil {
		return err
	}
	_, err = m.store.RefreshSessionVolume(ctx, sessionID)
	return err
}

// Complete transitions an active session to completed, setting the end
// timestamp, duration, and final volume. Idempotent: completing an
// already-completed session returns the stored result unchanged, so a client
// retrying after a dropped response does not error.
func (m *Manager) Complete(ctx context.Context, sessionID uuid.UUID, rating *int, notes string) (*models.Session, error) {
	s, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch s.Status {
	case models.StatusCompleted:
		return s, nil
	case models.StatusAbandoned:
		return nil, models.ErrNotFound
	}

	ended := m.now().UTC()
	s.Status = models.StatusCompleted
	s.EndedAt = &ended
	s.DurationSec = int(ended.Sub(s.StartedAt) / time.Second)
	s.TotalVolumeKg = s.Volume()
	if rating != nil {
		s.Rating = rating
	}
	if notes != "" {
		s.Notes = notes
	}

	updated, err := m.store.FinishSession(ctx, s)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost a race with another terminal call; the stored state wins.
		stored, err := m.store.GetSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if stored.Status != models.StatusCompleted {
			return nil, models.ErrNotFound
		}
		return stored, nil
	}
	return s, nil
}

// Abandon transitions an active session to abandoned. Abandoning an
// already-abandoned session is a no-op so conflict-recovery retries are safe.
func (m *Manager) Abandon(ctx context.Context, sessionID uuid.UUID) error {
	s, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	switch s.Status {
	case models.StatusAbandoned:
		return nil
	case models.StatusCompleted:
		return models.ErrNotFound
	}

	ended := m.now().UTC()
	s.Status = models.StatusAbandoned
	s.EndedAt = &ended
	s.DurationSec = int(ended.Sub(s.StartedAt) / time.Second)
	s.TotalVolumeKg = s.Volume()

	if _, err := m.store.FinishSession(ctx, s); err != nil {
		return err
	}
	return nil
}

// resolveWeight returns the explicit weight, or the lifter's current body
// weight for bodyweight exercises.
func (m *Manager) resolveWeight(ctx context.Context, userID int, ex models.Exercise, weight *float64) (float64, error) {
	if weight != nil {
		return *weight, nil
	}
	if !ex.IsBodyweight() {
		return 0, &models.ValidationError{Field: "weight_kg", Reason: "required for " + ex.Equipment + " exercises"}
	}
	stats, err := m.store.LatestBodyStats(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, models.ErrMissingBodyWeight
		}
		return 0, err
	}
	return stats.WeightKg, nil
}
