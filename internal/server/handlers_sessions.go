package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/claude/repcoach/internal/sessions"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// startSessionRequest is the JSON body for starting a live session. Block
// and member default to the start of the workout.
type startSessionRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
	Block  int       `json:"block"`
	Member int       `json:"member"`
}

type selectRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.PlanID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "plan_id required"})
		return
	}

	view, err := s.sessions.Start(r.Context(), userIDFromContext(r), req.PlanID, req.Block, req.Member)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := s.sessions.Get(id, userIDFromContext(r))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Discard(id, userIDFromContext(r)); err != nil {
		s.writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionAction feeds record, complete, skip, select or previous to
// a live session and returns the new view.
func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	ev := workout.Event{Action: workout.Action(chi.URLParam(r, "action"))}
	switch ev.Action {
	case workout.ActionRecord:
		if err := decodeOptional(r.Body, &ev.Fields); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	case workout.ActionSelect:
		var req selectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
		ev.Index = req.Index
	}

	view, err := s.sessions.Apply(r.Context(), id, userIDFromContext(r), ev)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sessions.ErrNotFound), errors.Is(err, storage.ErrPlanNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workout.ErrExerciseIndex), errors.Is(err, workout.ErrUnknownAction),
		errors.Is(err, workout.ErrStartPosition):
		status = http.StatusBadRequest
	case errors.Is(err, workout.ErrNoCurrentExercise), errors.Is(err, workout.ErrSessionFinished):
		status = http.StatusConflict
	default:
		s.log.Error("session error", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return uuid.Nil, false
	}
	return id, true
}

// decodeOptional decodes a JSON body, treating an empty body as no fields.
func decodeOptional(body io.Reader, v any) error {
	err := json.NewDecoder(body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
