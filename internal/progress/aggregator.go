// Package progress derives read-only views over completed session history:
// personal records, volume trends, and muscle recovery state. It never
// mutates session data and always recomputes from source rows, so results
// cannot drift from what was actually logged.
package progress

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/meltforce/fitforge/internal/config"
	"github.com/meltforce/fitforge/internal/storage"
)

// Store is the read-only persistence surface the aggregator scans.
// *storage.DB satisfies it.
type Store interface {
	PersonalRecord(ctx context.Context, userID int, exerciseID string) (*storage.PersonalRecordRow, error)
	VolumeByDay(ctx context.Context, start, end time.Time, userID int) ([]storage.DayVolume, error)
	MuscleLastTrained(ctx context.Context, userID int) ([]storage.MuscleSession, error)
}

// MuscleRecovery is the recovery estimate for one muscle. The percentage is
// a heuristic (elapsed time against a tunable per-muscle window), not a
// physiological measurement.
type MuscleRecovery struct {
	Muscle        string    `json:"muscle"`
	RecoveryPct   float64   `json:"recovery_pct"`
	LastTrainedAt time.Time `json:"last_trained_at"`
	WindowHours   float64   `json:"window_hours"`
}

// Aggregator computes derived metrics from completed sessions.
type Aggregator struct {
	store Store
	cfg   config.RecoveryConfig
	now   func() time.Time
}

// New creates an Aggregator with the given recovery tuning.
func New(store Store, cfg config.RecoveryConfig) *Aggregator {
	return &Aggregator{store: store, cfg: cfg, now: time.Now}
}

// PersonalRecord returns the best weight×reps set for the exercise,
// recomputed from session history on every call. Returns models.ErrNotFound
// when no completed history exists.
func (a *Aggregator) PersonalRecord(ctx context.Context, userID int, exerciseID string) (*storage.PersonalRecordRow, error) {
	return a.store.PersonalRecord(ctx, userID, exerciseID)
}

// VolumeTrend returns one entry per day for the trailing window, newest day
// last. Days with no completed sets are explicit zero entries so callers can
// tell "no workout" from "missing data".
func (a *Aggregator) VolumeTrend(ctx context.Context, userID int, windowDays int) ([]storage.DayVolume, error) {
	if windowDays < 1 {
		return nil, fmt.Errorf("windowDays must be at least 1, got %d", windowDays)
	}

	today := a.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(windowDays - 1))
	end := today.AddDate(0, 0, 1)

	rows, err := a.store.VolumeByDay(ctx, start, end, userID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[time.Time]float64, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Truncate(24*time.Hour)] = r.VolumeKg
	}

	trend := make([]storage.DayVolume, 0, windowDays)
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		trend = append(trend, storage.DayVolume{Day: day, VolumeKg: byDay[day]})
	}
	return trend, nil
}

// RecoveryState estimates per-muscle recovery from the most recent completed
// session engaging each muscle. Muscles with no training history are omitted
// rather than guessed at. Recovery is min(100, elapsed/window×100), where the
// window is the configured base stretched by the session's mean RPE above
// the configured reference.
func (a *Aggregator) RecoveryState(ctx context.Context, userID int) ([]MuscleRecovery, error) {
	sessions, err := a.store.MuscleLastTrained(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	result := make([]MuscleRecovery, 0, len(sessions))
	for _, ms := range sessions {
		window := a.scaledWindow(ms)
		elapsed := now.Sub(ms.EndedAt).Hours()
		if elapsed < 0 {
			elapsed = 0
		}
		pct := elapsed / window * 100
		if pct > 100 {
			pct = 100
		}
		result = append(result, MuscleRecovery{
			Muscle:        ms.Muscle,
			RecoveryPct:   pct,
			LastTrainedAt: ms.EndedAt,
			WindowHours:   window,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Muscle < result[j].Muscle })
	return result, nil
}

// scaledWindow stretches the muscle's base recovery window by logged session
// intensity. Sessions without RPE use the base window unscaled.
func (a *Aggregator) scaledWindow(ms storage.MuscleSession) float64 {
	base, ok := a.cfg.BaseHours[ms.Muscle]
	if !ok {
		base = a.cfg.DefaultBaseHours
	}
	if ms.AvgRPE == nil {
		return base
	}
	scaled := base * (1 + (*ms.AvgRPE-a.cfg.RPEReference)*a.cfg.RPEScalePerPoint)
	if scaled < base/2 {
		// Low-RPE sessions still count as training stress.
		scaled = base / 2
	}
	return scaled
}
