package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/repcoach/internal/ingest/plan"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePlanIngest(w http.ResponseWriter, r *http.Request) {
	var in models.PlanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.plans.IngestPlan(r.Context(), in, userIDFromContext(r))
	if err != nil {
		s.writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePlanCSVIngest(w http.ResponseWriter, r *http.Request) {
	result, err := s.plans.Ingest(r.Context(), r.Body, userIDFromContext(r))
	if err != nil {
		s.writeIngestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeIngestError(w http.ResponseWriter, err error) {
	s.log.Error("plan ingest error", "error", err)
	status := http.StatusInternalServerError
	if errors.Is(err, plan.ErrEmptyPlan) || errors.Is(err, plan.ErrParse) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.db.ListPlans(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if plans == nil {
		plans = []models.PlanRow{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, rows, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.PlanDetail{PlanRow: *p, Rows: rows})
}

func (s *Server) handlePlanOverview(w http.ResponseWriter, r *http.Request) {
	p, rows, ok := s.loadPlan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, models.NewPlanOverview(*p, rows))
}

func (s *Server) loadPlan(w http.ResponseWriter, r *http.Request) (*models.PlanRow, []workout.ExerciseSetRow, bool) {
	planID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid plan ID"})
		return nil, nil, false
	}

	p, rows, err := s.db.GetPlan(r.Context(), planID, userIDFromContext(r))
	if errors.Is(err, storage.ErrPlanNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "plan not found"})
		return nil, nil, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, nil, false
	}
	return p, rows, true
}

func (s *Server) handleQuerySetLogs(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	exercise := r.URL.Query().Get("exercise")
	rows, err := s.db.QuerySetLogs(r.Context(), start, end, userIDFromContext(r), exercise)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []models.SetLogRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleUploadSetLog stores a session finished offline. Re-sending the same
// session is harmless: rows already stored are skipped.
func (s *Server) handleUploadSetLog(w http.ResponseWriter, r *http.Request) {
	var fs models.FinishedSession
	if err := json.NewDecoder(r.Body).Decode(&fs); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if fs.SessionID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id required"})
		return
	}
	if fs.FinishedAt.IsZero() {
		fs.FinishedAt = time.Now()
	}

	uid := userIDFromContext(r)
	inserted, err := s.db.InsertSetLog(r.Context(), fs.Rows(uid))
	if err != nil {
		s.log.Error("set log upload error", "session_id", fs.SessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("set log uploaded", "session_id", fs.SessionID, "sets", len(fs.Sets), "inserted", inserted)
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": fs.SessionID,
		"received":   len(fs.Sets),
		"inserted":   inserted,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
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
