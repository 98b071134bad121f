// Package overload proposes next-session targets using a fixed-percentage
// progressive overload heuristic. Output is advisory only: the engine never
// writes data, never recommends a weight reduction, and never invents a
// starting weight when there is no history.
package overload

import (
	"context"
	"errors"
	"math"

	"github.com/meltforce/fitforge/internal/config"
	"github.com/meltforce/fitforge/internal/models"
)

// ErrNoHistory means the user has no completed sets for the exercise. The
// caller should prompt for a starting weight instead of guessing one.
var ErrNoHistory = errors.New("no completed history for exercise")

// Store is the read-only history the engine consumes.
type Store interface {
	// LastCompletedSets returns the sets for the exercise from the user's
	// most recent completed session containing it, ordered by set number.
	LastCompletedSets(ctx context.Context, userID int, exerciseID string) ([]models.SetEntry, error)
}

// Recommendation is a proposed next-session target for one exercise.
type Recommendation struct {
	ExerciseID string  `json:"exercise_id"`
	WeightKg   float64 `json:"weight_kg"`
	Reps       int     `json:"reps"`
	Sets       int     `json:"sets"`
	Increased  bool    `json:"increased"`
}

// Engine computes recommendations from exercise history.
type Engine struct {
	store Store
	cfg   config.OverloadConfig
}

// New creates an Engine with the given overload tuning.
func New(store Store, cfg config.OverloadConfig) *Engine {
	return &Engine{store: store, cfg: cfg}
}

// Recommend proposes the next target for the exercise. When every set of the
// most recent session met its prescribed reps, the working weight increases
// by the configured percentage, rounded to the plate step; otherwise the same
// weight and reps are proposed again. There is deliberately no automatic
// regression: backing off is a judgment call about injury and fatigue the
// engine cannot make.
func (e *Engine) Recommend(ctx context.Context, userID int, exerciseID string) (*Recommendation, error) {
	sets, err := e.store.LastCompletedSets(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	if len(sets) == 0 {
		return nil, ErrNoHistory
	}

	top := sets[0]
	for _, s := range sets[1:] {
		if s.WeightKg > top.WeightKg {
			top = s
		}
	}
	weight := top.WeightKg
	reps := top.Reps
	if top.TargetReps != nil {
		reps = *top.TargetReps
	}

	rec := &Recommendation{
		ExerciseID: exerciseID,
		WeightKg:   weight,
		Reps:       reps,
		Sets:       len(sets),
	}

	if targetsMet(sets) {
		proposed := e.round(weight * (1 + e.cfg.IncrementPct))
		if proposed > weight {
			rec.WeightKg = proposed
			rec.Increased = true
		}
	}
	return rec, nil
}

// targetsMet reports whether every set reached its prescribed reps. Sets
// logged without a prescription count as met: the lifter did what they
// planned, we just were not told the plan.
func targetsMet(sets []models.SetEntry) bool {
	for _, s := range sets {
		if s.TargetReps != nil && s.Reps < *s.TargetReps {
			return false
		}
	}
	return true
}

// round snaps a weight to the nearest configured plate step.
func (e *Engine) round(weight float64) float64 {
	step := e.cfg.RoundToKg
	if step <= 0 {
		return weight
	}
	return math.Round(weight/step) * step
}
