package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/fitforge/internal/models"
)

// ReadCSV parses the export CSV format back into completed sessions, grouped
// and ordered as they appear in the file. Used to seed a fresh database from
// a previous export. Rows with an empty exercise_id are set-less session
// markers and produce a session with no sets.
func ReadCSV(r io.Reader) ([]models.Session, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected csv header: column %d is %q, want %q", i, header[i], col)
		}
	}

	var sessions []models.Session
	index := make(map[uuid.UUID]int)

	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		id, err := uuid.Parse(row[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid session_id %q", line, row[0])
		}

		i, ok := index[id]
		if !ok {
			s, err := parseSessionColumns(id, row)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			index[id] = len(sessions)
			sessions = append(sessions, s)
			i = index[id]
		}

		// Empty exercise_id marks a session that had no sets
		if row[6] == "" {
			continue
		}

		entry, err := parseSetColumns(id, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		sessions[i].Sets = append(sessions[i].Sets, entry)
		sessions[i].TotalVolumeKg += entry.VolumeKg
	}

	return sessions, nil
}

func parseSessionColumns(id uuid.UUID, row []string) (models.Session, error) {
	started, err := time.Parse(time.RFC3339, row[1])
	if err != nil {
		return models.Session{}, fmt.Errorf("invalid started_at %q", row[1])
	}

	s := models.Session{
		ID:        id,
		Status:    models.StatusCompleted,
		StartedAt: started,
		Notes:     row[5],
		Sets:      []models.SetEntry{},
	}

	if row[2] != "" {
		ended, err := time.Parse(time.RFC3339, row[2])
		if err != nil {
			return models.Session{}, fmt.Errorf("invalid ended_at %q", row[2])
		}
		s.EndedAt = &ended
	}
	if row[3] != "" {
		s.DurationSec, err = strconv.Atoi(row[3])
		if err != nil {
			return models.Session{}, fmt.Errorf("invalid duration_sec %q", row[3])
		}
	}
	if row[4] != "" {
		rating, err := strconv.Atoi(row[4])
		if err != nil {
			return models.Session{}, fmt.Errorf("invalid rating %q", row[4])
		}
		s.Rating = &rating
	}

	return s, nil
}

func parseSetColumns(sessionID uuid.UUID, row []string) (models.SetEntry, error) {
	setNumber, err := strconv.Atoi(row[7])
	if err != nil {
		return models.SetEntry{}, fmt.Errorf("invalid set_number %q", row[7])
	}
	weight, err := strconv.ParseFloat(row[8], 64)
	if err != nil {
		return models.SetEntry{}, fmt.Errorf("invalid weight_kg %q", row[8])
	}
	reps, err := strconv.Atoi(row[9])
	if err != nil {
		return models.SetEntry{}, fmt.Errorf("invalid reps %q", row[9])
	}
	volume, err := strconv.ParseFloat(row[13], 64)
	if err != nil {
		return models.SetEntry{}, fmt.Errorf("invalid volume_kg %q", row[13])
	}
	logged, err := time.Parse(time.RFC3339, row[14])
	if err != nil {
		return models.SetEntry{}, fmt.Errorf("invalid logged_at %q", row[14])
	}

	e := models.SetEntry{
		SessionID:  sessionID,
		ExerciseID: row[6],
		SetNumber:  setNumber,
		WeightKg:   weight,
		Reps:       reps,
		Equipment:  row[12],
		VolumeKg:   volume,
		LoggedAt:   logged,
	}

	if row[10] != "" {
		target, err := strconv.Atoi(row[10])
		if err != nil {
			return models.SetEntry{}, fmt.Errorf("invalid target_reps %q", row[10])
		}
		e.TargetReps = &target
	}
	if row[11] != "" {
		rpe, err := strconv.ParseFloat(row[11], 64)
		if err != nil {
			return models.SetEntry{}, fmt.Errorf("invalid rpe %q", row[11])
		}
		e.RPE = &rpe
	}

	return e, nil
}
