package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/meltforce/fitforge/internal/models"
)

type fakeStore struct {
	exercises map[string]models.Exercise
	getCalls  int
	listCalls int
}

func (f *fakeStore) GetExercise(ctx context.Context, id string) (models.Exercise, error) {
	f.getCalls++
	e, ok := f.exercises[id]
	if !ok {
		return models.Exercise{}, models.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	f.listCalls++
	out := make([]models.Exercise, 0, len(f.exercises))
	for _, e := range f.exercises {
		out = append(out, e)
	}
	return out, nil
}

func validStore() *fakeStore {
	return &fakeStore{exercises: map[string]models.Exercise{
		"pull-up": {
			ID: "pull-up", Name: "Pull-Up", Equipment: models.EquipmentBodyweight,
			Muscles: []models.MuscleEngagement{{Muscle: "back", Percentage: 70}, {Muscle: "biceps", Percentage: 30}},
		},
		"leg-press": {
			ID: "leg-press", Name: "Leg Press", Equipment: models.EquipmentMachine,
			Muscles: []models.MuscleEngagement{{Muscle: "quads", Percentage: 100}},
		},
	}}
}

// TestWarmCachesExercises verifies lookups after Warm never hit the store.
func TestWarmCachesExercises(t *testing.T) {
	ctx := context.Background()
	store := validStore()
	c := New(store)
	if err := c.Warm(ctx); err != nil {
		t.Fatalf("Warm: %v", err)
	}

	for i := 0; i < 3; i++ {
		e, err := c.Exercise(ctx, "pull-up")
		if err != nil {
			t.Fatalf("Exercise: %v", err)
		}
		if e.Name != "Pull-Up" {
			t.Errorf("name = %q, want Pull-Up", e.Name)
		}
	}
	if store.getCalls != 0 {
		t.Errorf("getCalls = %d, want 0 after Warm", store.getCalls)
	}
}

// TestWarmRejectsBadEngagement verifies startup fails on seed data whose
// muscle percentages do not sum to 100.
func TestWarmRejectsBadEngagement(t *testing.T) {
	store := validStore()
	store.exercises["bad"] = models.Exercise{
		ID: "bad", Name: "Bad", Equipment: models.EquipmentBarbell,
		Muscles: []models.MuscleEngagement{{Muscle: "chest", Percentage: 60}},
	}
	if err := New(store).Warm(context.Background()); err == nil {
		t.Fatal("expected validation error")
	}
}

// TestExerciseUnknown verifies a warmed catalog treats a cache miss as not found.
func TestExerciseUnknown(t *testing.T) {
	ctx := context.Background()
	c := New(validStore())
	if err := c.Warm(ctx); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	_, err := c.Exercise(ctx, "nope")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestIsBodyweight verifies the equipment tag drives bodyweight detection.
func TestIsBodyweight(t *testing.T) {
	ctx := context.Background()
	c := New(validStore())
	if err := c.Warm(ctx); err != nil {
		t.Fatalf("Warm: %v", err)
	}

	bw, err := c.IsBodyweight(ctx, "pull-up")
	if err != nil || !bw {
		t.Errorf("IsBodyweight(pull-up) = %v, %v; want true, nil", bw, err)
	}
	bw, err = c.IsBodyweight(ctx, "leg-press")
	if err != nil || bw {
		t.Errorf("IsBodyweight(leg-press) = %v, %v; want false, nil", bw, err)
	}
}

// TestExerciseLazyLoad verifies an unwarmed catalog falls through to the
// store once and caches the result.
func TestExerciseLazyLoad(t *testing.T) {
	ctx := context.Background()
	store := validStore()
	c := New(store)

	for i := 0; i < 2; i++ {
		if _, err := c.Exercise(ctx, "pull-up"); err != nil {
			t.Fatalf("Exercise: %v", err)
		}
	}
	if store.getCalls != 1 {
		t.Errorf("getCalls = %d, want 1", store.getCalls)
	}
}
