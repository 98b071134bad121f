// Package export serializes a user's completed session history. The format
// is a plain flattening of sessions and their sets into one CSV row per set;
// sessions without sets still emit a single row so the occasion is visible.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/meltforce/fitforge/internal/models"
)

var csvHeader = []string{
	"session_id", "started_at", "ended_at", "duration_sec", "rating", "session_notes",
	"exercise_id", "set_number", "weight_kg", "reps", "target_reps", "rpe",
	"equipment", "volume_kg", "logged_at",
}

// WriteCSV writes completed sessions as CSV rows, one per set.
func WriteCSV(w io.Writer, sessions []models.Session) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, s := range sessions {
		base := sessionColumns(s)
		if len(s.Sets) == 0 {
			if err := cw.Write(append(base, "", "", "", "", "", "", "", "", "")); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
			continue
		}
		for _, e := range s.Sets {
			row := append(append([]string(nil), base...), setColumns(e)...)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

func sessionColumns(s models.Session) []string {
	ended := ""
	if s.EndedAt != nil {
		ended = s.EndedAt.UTC().Format(time.RFC3339)
	}
	rating := ""
	if s.Rating != nil {
		rating = strconv.Itoa(*s.Rating)
	}
	return []string{
		s.ID.String(),
		s.StartedAt.UTC().Format(time.RFC3339),
		ended,
		strconv.Itoa(s.DurationSec),
		rating,
		s.Notes,
	}
}

func setColumns(e models.SetEntry) []string {
	target := ""
	if e.TargetReps != nil {
		target = strconv.Itoa(*e.TargetReps)
	}
	rpe := ""
	if e.RPE != nil {
		rpe = strconv.FormatFloat(*e.RPE, 'f', -1, 64)
	}
	return []string{
		e.ExerciseID,
		strconv.Itoa(e.SetNumber),
		strconv.FormatFloat(e.WeightKg, 'f', -1, 64),
		strconv.Itoa(e.Reps),
		target,
		rpe,
		e.Equipment,
		strconv.FormatFloat(e.VolumeKg, 'f', -1, 64),
		e.LoggedAt.UTC().Format(time.RFC3339),
	}
}
