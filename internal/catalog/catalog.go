// Package catalog serves exercise reference data. The catalog is immutable
// at runtime (seeded by migration), so entries are cached in memory after
// first load.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/meltforce/fitforge/internal/models"
)

// Store is the persistence the catalog reads from.
type Store interface {
	GetExercise(ctx context.Context, exerciseID string) (models.Exercise, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
}

// Catalog caches exercise definitions in front of the store.
type Catalog struct {
	store Store

	mu     sync.RWMutex
	byID   map[string]models.Exercise
	sorted []models.Exercise
	warmed bool
}

// New creates a Catalog backed by the given store.
func New(store Store) *Catalog {
	return &Catalog{store: store, byID: make(map[string]models.Exercise)}
}

// Warm loads and validates the full catalog. Called at startup so malformed
// seed data (engagement not summing to 100) fails fast instead of skewing
// recovery math later.
func (c *Catalog) Warm(ctx context.Context) error {
	exercises, err := c.store.ListExercises(ctx)
	if err != nil {
		return fmt.Errorf("loading exercise catalog: %w", err)
	}
	for _, e := range exercises {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("catalog validation: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sorted = exercises
	for _, e := range exercises {
		c.byID[e.ID] = e
	}
	c.warmed = true
	return nil
}

// Exercise returns one definition, from cache when possible.
func (c *Catalog) Exercise(ctx context.Context, exerciseID string) (models.Exercise, error) {
	c.mu.RLock()
	e, ok := c.byID[exerciseID]
	warmed := c.warmed
	c.mu.RUnlock()
	if ok {
		return e, nil
	}
	if warmed {
		// The catalog is immutable; a cache miss after Warm is a miss.
		return models.Exercise{}, models.ErrNotFound
	}

	e, err := c.store.GetExercise(ctx, exerciseID)
	if err != nil {
		return models.Exercise{}, err
	}
	c.mu.Lock()
	c.byID[e.ID] = e
	c.mu.Unlock()
	return e, nil
}

// List returns the full catalog sorted by name.
func (c *Catalog) List(ctx context.Context) ([]models.Exercise, error) {
	c.mu.RLock()
	if c.warmed {
		out := append([]models.Exercise(nil), c.sorted...)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	exercises, err := c.store.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	return exercises, nil
}

// IsBodyweight reports whether the exercise defaults its set weight to the
// lifter's body weight.
func (c *Catalog) IsBodyweight(ctx context.Context, exerciseID string) (bool, error) {
	e, err := c.Exercise(ctx, exerciseID)
	if err != nil {
		return false, err
	}
	return e.IsBodyweight(), nil
}
