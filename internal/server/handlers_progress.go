package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/meltforce/fitforge/internal/export"
	"github.com/meltforce/fitforge/internal/overload"
)

func (s *Server) handlePersonalRecord(w http.ResponseWriter, r *http.Request) {
	exerciseID := r.URL.Query().Get("exercise")
	if exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("validation", "exercise parameter required"))
		return
	}

	record, err := s.aggregator.PersonalRecord(r.Context(), userIDFromContext(r), exerciseID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleVolumeTrend(w http.ResponseWriter, r *http.Request) {
	windowDays := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("validation", "invalid days parameter"))
			return
		}
		windowDays = n
	}

	trend, err := s.aggregator.VolumeTrend(r.Context(), userIDFromContext(r), windowDays)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleRecovery(w http.ResponseWriter, r *http.Request) {
	states, err := s.aggregator.RecoveryState(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	exerciseID := r.URL.Query().Get("exercise")
	if exerciseID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("validation", "exercise parameter required"))
		return
	}

	rec, err := s.engine.Recommend(r.Context(), userIDFromContext(r), exerciseID)
	if errors.Is(err, overload.ErrNoHistory) {
		writeJSON(w, http.StatusNotFound, errorBody("no_history", err.Error()))
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.db.CompletedSessions(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("fitforge-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(w, sessions); err != nil {
		s.log.Error("csv export failed", "error", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userIDFromContext(r),
		"user":    userInfoFromContext(r),
	})
}
