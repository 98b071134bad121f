package workout

import (
	"context"

	"github.com/google/uuid"
	"github.com/meltforce/fitforge/internal/models"
)

// Store is the persistence contract the session manager needs. *storage.DB
// satisfies it; tests use an in-memory fake. Every write is durable before
// the call returns — the manager acknowledges nothing it has not stored.
type Store interface {
	// CreateSession persists a new active session, atomically claiming the
	// user's single active-session slot. Returns models.ErrSessionConflict
	// when the user already has an active session.
	CreateSession(ctx context.Context, s *models.Session) error

	// GetSession loads a session with its sets ordered by exercise and set
	// number. Returns models.ErrNotFound for an unknown ID.
	GetSession(ctx context.Context, sessionID uuid.UUID) (*models.Session, error)

	// InsertSet appends one set entry. A duplicate (exercise, set number)
	// within the session surfaces as a *models.ValidationError.
	InsertSet(ctx context.Context, e models.SetEntry) error

	// DeleteSet removes a set for the delete-then-relog correction flow.
	DeleteSet(ctx context.Context, sessionID uuid.UUID, exerciseID string, setNumber int) error

	// RefreshSessionVolume recomputes the running session volume from the
	// stored sets and returns the new total.
	RefreshSessionVolume(ctx context.Context, sessionID uuid.UUID) (float64, error)

	// FinishSession moves an active session to a terminal status and
	// releases the active-session slot. Returns false when the session was
	// not active (already finished or unknown).
	FinishSession(ctx context.Context, s *models.Session) (bool, error)

	// LatestBodyStats returns the user's current body measurements, or
	// models.ErrNotFound when none are recorded.
	LatestBodyStats(ctx context.Context, userID int) (*models.BodyStatsRecord, error)
}

// Catalog is the read-only exercise reference data the manager consults for
// bodyweight auto-population and exercise existence checks.
type Catalog interface {
	Exercise(ctx context.Context, exerciseID string) (models.Exercise, error)
}
