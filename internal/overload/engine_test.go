package overload

import (
	"context"
	"errors"
	"testing"

	"github.com/meltforce/fitforge/internal/config"
	"github.com/meltforce/fitforge/internal/models"
)

type fakeStore struct {
	sets []models.SetEntry
}

func (f *fakeStore) LastCompletedSets(ctx context.Context, userID int, exerciseID string) ([]models.SetEntry, error) {
	return f.sets, nil
}

func intPtr(v int) *int { return &v }

func testEngine(sets ...models.SetEntry) *Engine {
	return New(&fakeStore{sets: sets}, config.OverloadConfig{IncrementPct: 0.03, RoundToKg: 0.5})
}

func workingSets(weight float64, reps, target, count int) []models.SetEntry {
	sets := make([]models.SetEntry, count)
	for i := range sets {
		sets[i] = models.SetEntry{
			ExerciseID: "barbell-bench-press",
			SetNumber:  i + 1,
			WeightKg:   weight,
			Reps:       reps,
			TargetReps: intPtr(target),
		}
	}
	return sets
}

// TestRecommendIncrease verifies the canonical case: 3×10 @ 100 with all
// targets met proposes 103 at a 3% increment.
func TestRecommendIncrease(t *testing.T) {
	e := testEngine(workingSets(100, 10, 10, 3)...)

	rec, err := e.Recommend(context.Background(), 1, "barbell-bench-press")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.WeightKg != 103 {
		t.Errorf("weight = %v, want 103", rec.WeightKg)
	}
	if !rec.Increased {
		t.Error("Increased = false, want true")
	}
	if rec.Reps != 10 || rec.Sets != 3 {
		t.Errorf("reps×sets = %d×%d, want 10×3", rec.Reps, rec.Sets)
	}
}

// TestRecommendPlateau verifies a missed target repeats the same weight with
// no regression.
func TestRecommendPlateau(t *testing.T) {
	sets := workingSets(100, 10, 10, 3)
	sets[2].Reps = 7 // last set missed

	rec, err := testEngine(sets...).Recommend(context.Background(), 1, "barbell-bench-press")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.WeightKg != 100 {
		t.Errorf("weight = %v, want 100 (repeat)", rec.WeightKg)
	}
	if rec.Increased {
		t.Error("Increased = true, want false")
	}
}

// TestRecommendNoHistory verifies ErrNoHistory instead of a fabricated
// starting weight.
func TestRecommendNoHistory(t *testing.T) {
	_, err := testEngine().Recommend(context.Background(), 1, "barbell-bench-press")
	if !errors.Is(err, ErrNoHistory) {
		t.Errorf("err = %v, want ErrNoHistory", err)
	}
}

// TestRecommendRounding verifies the proposal snaps to the configured plate
// step.
func TestRecommendRounding(t *testing.T) {
	e := New(&fakeStore{sets: workingSets(60, 8, 8, 3)}, config.OverloadConfig{IncrementPct: 0.03, RoundToKg: 2.5})

	rec, err := e.Recommend(context.Background(), 1, "barbell-bench-press")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// 60 × 1.03 = 61.8 → nearest 2.5 kg step is 62.5.
	if rec.WeightKg != 62.5 {
		t.Errorf("weight = %v, want 62.5", rec.WeightKg)
	}
}

// TestRecommendRoundingNoRegression verifies rounding can never propose less
// than the last working weight.
func TestRecommendRoundingNoRegression(t *testing.T) {
	e := New(&fakeStore{sets: workingSets(100, 8, 8, 3)}, config.OverloadConfig{IncrementPct: 0.01, RoundToKg: 5})

	rec, err := e.Recommend(context.Background(), 1, "barbell-bench-press")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// 100 × 1.01 = 101 → nearest 5 kg step is 100: no change, not a cut.
	if rec.WeightKg != 100 {
		t.Errorf("weight = %v, want 100", rec.WeightKg)
	}
	if rec.Increased {
		t.Error("Increased = true, want false")
	}
}

// TestRecommendUntrackedTargets verifies sets logged without a prescription
// count as met.
func TestRecommendUntrackedTargets(t *testing.T) {
	sets := workingSets(80, 12, 12, 2)
	sets[0].TargetReps = nil
	sets[1].TargetReps = nil

	rec, err := testEngine(sets...).Recommend(context.Background(), 1, "barbell-bench-press")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !rec.Increased {
		t.Error("Increased = false, want true")
	}
	if rec.Reps != 12 {
		t.Errorf("reps = %d, want 12 (actual reps when no prescription)", rec.Reps)
	}
}

// TestRecommendUsesHeaviestWorkingSet verifies the increment applies to the
// heaviest set of the session, not the first.
func TestRecommendUsesHeaviestWorkingSet(t *testing.T) {
	sets := []models.SetEntry{
		{ExerciseID: "barbell-bench-press", SetNumber: 1, WeightKg: 90, Reps: 10, TargetReps: intPtr(10)},
		{ExerciseID: "barbell-bench-press", SetNumber: 2, WeightKg: 100, Reps: 8, TargetReps: intPtr(8)},
	}

	rec, err := testEngine(sets...).Recommend(context.Background(), 1, "barbell-bench-press")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if rec.WeightKg != 103 {
		t.Errorf("weight = %v, want 103", rec.WeightKg)
	}
}
