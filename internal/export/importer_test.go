package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/fitforge/internal/models"
)

// TestReadCSVRoundTrip verifies an exported file parses back into the same
// sessions, including a session that had no sets and optional fields left
// empty.
func TestReadCSVRoundTrip(t *testing.T) {
	rating := 4
	target := 8
	rpe := 7.5
	ended := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)

	sessions := []models.Session{
		{
			ID:            uuid.New(),
			Status:        models.StatusCompleted,
			StartedAt:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			EndedAt:       &ended,
			Rating:        &rating,
			Notes:         "push day, felt strong",
			DurationSec:   3600,
			TotalVolumeKg: 1080,
			Sets: []models.SetEntry{
				{
					ExerciseID: "barbell_bench_press",
					SetNumber:  1,
					WeightKg:   100,
					Reps:       8,
					TargetReps: &target,
					RPE:        &rpe,
					Equipment:  "barbell",
					VolumeKg:   800,
					LoggedAt:   time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC),
				},
				{
					ExerciseID: "dips",
					SetNumber:  1,
					WeightKg:   82.5,
					Reps:       12,
					Equipment:  "bodyweight",
					VolumeKg:   990,
					LoggedAt:   time.Date(2025, 6, 1, 10, 20, 0, 0, time.UTC),
				},
			},
		},
		{
			ID:        uuid.New(),
			Status:    models.StatusCompleted,
			StartedAt: time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC),
			Sets:      []models.SetEntry{},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sessions); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	if got[0].ID != sessions[0].ID {
		t.Errorf("session ID = %v, want %v", got[0].ID, sessions[0].ID)
	}
	if got[0].Rating == nil || *got[0].Rating != 4 {
		t.Errorf("rating = %v, want 4", got[0].Rating)
	}
	if len(got[0].Sets) != 2 {
		t.Fatalf("got %d sets, want 2", len(got[0].Sets))
	}
	s := got[0].Sets[0]
	if s.TargetReps == nil || *s.TargetReps != 8 {
		t.Errorf("target reps = %v, want 8", s.TargetReps)
	}
	if s.RPE == nil || *s.RPE != 7.5 {
		t.Errorf("rpe = %v, want 7.5", s.RPE)
	}
	if got[0].Sets[1].TargetReps != nil {
		t.Errorf("set 2 target reps = %v, want nil", got[0].Sets[1].TargetReps)
	}
	if len(got[1].Sets) != 0 {
		t.Errorf("session 2 has %d sets, want 0", len(got[1].Sets))
	}
	if got[1].EndedAt != nil {
		t.Errorf("session 2 ended_at = %v, want nil", got[1].EndedAt)
	}
}

// TestReadCSVRejectsUnknownHeader verifies a file with a foreign column
// layout is rejected up front instead of misparsing rows.
func TestReadCSVRejectsUnknownHeader(t *testing.T) {
	in := "id,date,exercise,weight,reps,set,notes,a,b,c,d,e,f,g,h\n"
	if _, err := ReadCSV(strings.NewReader(in)); err == nil {
		t.Error("expected error for unknown header, got nil")
	}
}

// TestReadCSVRejectsMalformedRow verifies a bad numeric field reports the
// line it came from.
func TestReadCSVRejectsMalformedRow(t *testing.T) {
	id := uuid.New().String()
	in := strings.Join(csvHeader, ",") + "\n" +
		id + ",2025-06-01T10:00:00Z,,0,,," +
		"squat,one,100,8,,,barbell,800,2025-06-01T10:05:00Z\n"
	_, err := ReadCSV(strings.NewReader(in))
	if err == nil {
		t.Fatal("expected error for malformed set_number, got nil")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q does not name the line", err)
	}
}
