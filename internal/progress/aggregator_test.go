package progress

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meltforce/fitforge/internal/config"
	"github.com/meltforce/fitforge/internal/models"
	"github.com/meltforce/fitforge/internal/storage"
)

type fakeStore struct {
	record  *storage.PersonalRecordRow
	volumes []storage.DayVolume
	muscles []storage.MuscleSession
}

func (f *fakeStore) PersonalRecord(ctx context.Context, userID int, exerciseID string) (*storage.PersonalRecordRow, error) {
	if f.record == nil {
		return nil, models.ErrNotFound
	}
	return f.record, nil
}

func (f *fakeStore) VolumeByDay(ctx context.Context, start, end time.Time, userID int) ([]storage.DayVolume, error) {
	return f.volumes, nil
}

func (f *fakeStore) MuscleLastTrained(ctx context.Context, userID int) ([]storage.MuscleSession, error) {
	return f.muscles, nil
}

func testConfig() config.RecoveryConfig {
	return config.RecoveryConfig{
		BaseHours:        map[string]float64{"chest": 48, "quads": 72},
		DefaultBaseHours: 48,
		RPEReference:     7,
		RPEScalePerPoint: 0.10,
	}
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
}

func newTestAggregator(store Store) *Aggregator {
	a := New(store, testConfig())
	a.now = fixedNow
	return a
}

// TestVolumeTrendZeroFills verifies empty days appear as explicit zero
// entries, distinguishing "no workout" from "missing data".
func TestVolumeTrendZeroFills(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }
	store := &fakeStore{volumes: []storage.DayVolume{
		{Day: day(5), VolumeKg: 1200},
		{Day: day(8), VolumeKg: 900},
	}}

	trend, err := newTestAggregator(store).VolumeTrend(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("VolumeTrend: %v", err)
	}
	if len(trend) != 7 {
		t.Fatalf("len(trend) = %d, want 7", len(trend))
	}
	if !trend[0].Day.Equal(day(4)) {
		t.Errorf("trend starts %v, want %v", trend[0].Day, day(4))
	}
	if !trend[6].Day.Equal(day(10)) {
		t.Errorf("trend ends %v, want %v", trend[6].Day, day(10))
	}

	want := map[int]float64{4: 0, 5: 1200, 6: 0, 7: 0, 8: 900, 9: 0, 10: 0}
	for _, dv := range trend {
		if got := want[dv.Day.Day()]; dv.VolumeKg != got {
			t.Errorf("volume on day %d = %v, want %v", dv.Day.Day(), dv.VolumeKg, got)
		}
	}
}

// TestVolumeTrendNonUTCDayKeys verifies day buckets arriving in a non-UTC
// location still land on the UTC day grid, so their volume is not read as
// zero-filled.
func TestVolumeTrendNonUTCDayKeys(t *testing.T) {
	berlin := time.FixedZone("CEST", 2*60*60)
	store := &fakeStore{volumes: []storage.DayVolume{
		// Midnight UTC on June 8 expressed as 02:00 in a UTC+2 zone.
		{Day: time.Date(2025, 6, 8, 2, 0, 0, 0, berlin), VolumeKg: 900},
	}}

	trend, err := newTestAggregator(store).VolumeTrend(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("VolumeTrend: %v", err)
	}
	var got float64
	for _, dv := range trend {
		if dv.Day.Day() == 8 {
			got = dv.VolumeKg
		}
	}
	if got != 900 {
		t.Errorf("volume on June 8 = %v, want 900", got)
	}
}

// TestVolumeTrendBadWindow verifies a non-positive window is rejected.
func TestVolumeTrendBadWindow(t *testing.T) {
	_, err := newTestAggregator(&fakeStore{}).VolumeTrend(context.Background(), 1, 0)
	if err == nil {
		t.Fatal("expected error for windowDays=0")
	}
}

// TestPersonalRecordNotFound verifies missing history surfaces as
// ErrNotFound, never a fabricated record.
func TestPersonalRecordNotFound(t *testing.T) {
	_, err := newTestAggregator(&fakeStore{}).PersonalRecord(context.Background(), 1, "barbell-bench-press")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestPersonalRecordPassThrough verifies the aggregator reports the stored
// maximum unchanged.
func TestPersonalRecordPassThrough(t *testing.T) {
	rec := &storage.PersonalRecordRow{ExerciseID: "barbell-bench-press", WeightKg: 120, Reps: 5, VolumeKg: 600}
	pr, err := newTestAggregator(&fakeStore{record: rec}).PersonalRecord(context.Background(), 1, "barbell-bench-press")
	if err != nil {
		t.Fatalf("PersonalRecord: %v", err)
	}
	if pr.WeightKg != 120 || pr.Reps != 5 {
		t.Errorf("record = %+v, want 120×5", pr)
	}
}

// TestRecoveryStateScaling verifies the heuristic: elapsed hours against the
// base window stretched by RPE above the reference.
func TestRecoveryStateScaling(t *testing.T) {
	rpe := 9.0
	store := &fakeStore{muscles: []storage.MuscleSession{
		// chest: base 48h, RPE 9 → window 48×1.2 = 57.6h; elapsed 28.8h → 50%.
		{Muscle: "chest", EndedAt: fixedNow().Add(-28*time.Hour - 48*time.Minute), AvgRPE: &rpe},
		// quads: no RPE logged → base 72h window; elapsed 36h → 50%.
		{Muscle: "quads", EndedAt: fixedNow().Add(-36 * time.Hour)},
	}}

	state, err := newTestAggregator(store).RecoveryState(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecoveryState: %v", err)
	}
	if len(state) != 2 {
		t.Fatalf("len(state) = %d, want 2", len(state))
	}

	chest := state[0]
	if chest.Muscle != "chest" {
		t.Fatalf("state[0] = %q, want chest (sorted)", chest.Muscle)
	}
	if math.Abs(chest.WindowHours-57.6) > 1e-9 {
		t.Errorf("chest window = %v, want 57.6", chest.WindowHours)
	}
	if math.Abs(chest.RecoveryPct-50) > 1e-9 {
		t.Errorf("chest recovery = %v, want 50", chest.RecoveryPct)
	}

	quads := state[1]
	if math.Abs(quads.RecoveryPct-50) > 1e-9 {
		t.Errorf("quads recovery = %v, want 50", quads.RecoveryPct)
	}
}

// TestRecoveryStateClamps verifies recovery caps at 100 and an unknown
// muscle uses the default window.
func TestRecoveryStateClamps(t *testing.T) {
	store := &fakeStore{muscles: []storage.MuscleSession{
		{Muscle: "chest", EndedAt: fixedNow().Add(-200 * time.Hour)},
		{Muscle: "forearms", EndedAt: fixedNow().Add(-24 * time.Hour)},
	}}

	state, err := newTestAggregator(store).RecoveryState(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecoveryState: %v", err)
	}
	if state[0].RecoveryPct != 100 {
		t.Errorf("chest recovery = %v, want clamped to 100", state[0].RecoveryPct)
	}
	if state[1].WindowHours != 48 {
		t.Errorf("forearms window = %v, want default 48", state[1].WindowHours)
	}
}

// TestRecoveryStateNoHistory verifies untrained muscles are omitted, not
// fabricated.
func TestRecoveryStateNoHistory(t *testing.T) {
	state, err := newTestAggregator(&fakeStore{}).RecoveryState(context.Background(), 1)
	if err != nil {
		t.Fatalf("RecoveryState: %v", err)
	}
	if len(state) != 0 {
		t.Errorf("len(state) = %d, want 0", len(state))
	}
}
