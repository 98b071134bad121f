package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/fitforge/internal/models"
	"github.com/meltforce/fitforge/internal/workout"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes            string   `json:"notes"`
		PlannedExercises []string `json:"planned_exercises"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("validation", "invalid JSON: "+err.Error()))
			return
		}
	}

	session, err := s.manager.Start(r.Context(), userIDFromContext(r), req.Notes, req.PlannedExercises)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	var in workout.SetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("validation", "invalid JSON: "+err.Error()))
		return
	}

	entry, err := s.manager.LogSet(r.Context(), sessionID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	exerciseID := chi.URLParam(r, "exercise")
	setNumber, err := parsePositiveInt(chi.URLParam(r, "set"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("validation", "invalid set number"))
		return
	}

	if err := s.manager.DeleteSet(r.Context(), sessionID, exerciseID, setNumber); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	var req struct {
		Rating *int   `json:"rating,omitempty"`
		Notes  string `json:"notes"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("validation", "invalid JSON: "+err.Error()))
			return
		}
	}

	session, err := s.manager.Complete(r.Context(), sessionID, req.Rating, req.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.ownedSession(w, r)
	if !ok {
		return
	}

	if err := s.manager.Abandon(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("validation", err.Error()))
		return
	}

	sessions, err := s.db.QuerySessions(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("validation", "invalid session ID"))
		return
	}

	session, err := s.db.GetSession(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if session.UserID != userIDFromContext(r) {
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "session not found"))
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.catalog.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	ex, err := s.catalog.Exercise(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleCreateBodyStats(w http.ResponseWriter, r *http.Request) {
	var rec models.BodyStatsRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("validation", "invalid JSON: "+err.Error()))
		return
	}
	if rec.WeightKg <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("validation", "weight_kg must be positive"))
		return
	}
	rec.UserID = userIDFromContext(r)
	if rec.Date.IsZero() {
		rec.Date = time.Now().UTC().Truncate(24 * time.Hour)
	}
	rec.RecordedAt = time.Now().UTC()

	if err := s.db.InsertBodyStats(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleQueryBodyStats(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("validation", err.Error()))
		return
	}

	records, err := s.db.QueryBodyStats(r.Context(), start, end, userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// ownedSession parses the session ID from the URL and verifies the session
// belongs to the requesting user. Foreign sessions read as not found so their
// existence is not leaked.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("validation", "invalid session ID"))
		return uuid.Nil, false
	}

	session, err := s.db.GetSession(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return uuid.Nil, false
	}
	if session.UserID != userIDFromContext(r) {
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "session not found"))
		return uuid.Nil, false
	}
	return sessionID, true
}

// writeError maps the error taxonomy onto HTTP statuses. Anything not in the
// taxonomy is treated as a storage failure.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	switch {
	case errors.Is(err, models.ErrSessionConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict", err.Error()))
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", err.Error()))
	case errors.Is(err, models.ErrMissingBodyWeight):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("missing_profile_data", err.Error()))
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody("validation", ve.Error()))
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("storage", "internal error"))
	}
}

func errorBody(kind, msg string) map[string]string {
	return map[string]string{"kind": kind, "error": msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("must be positive")
	}
	return n, nil
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
