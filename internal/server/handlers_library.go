package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/repforge/repforge/internal/models"
)

func (s *Server) handleListWorkoutTemplates(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ws.Workouts(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleListWeekTemplates(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ws.Weeks(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleListProgramTemplates(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ws.Programs(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type saveRequest struct {
	Name      string `json:"name"`
	WorkoutID string `json:"workoutId,omitempty"`
	WeekID    string `json:"weekId,omitempty"`
}

func (s *Server) handleSaveWorkout(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := s.ws.SaveWorkout(r.Context(), req.WorkoutID, req.Name)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleSaveWeek(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := s.ws.SaveWeek(r.Context(), req.WeekID, req.Name)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleSaveProgram(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !decode(w, r, &req) {
		return
	}
	entry, err := s.ws.SaveProgram(r.Context(), req.Name)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleLoadWorkout copies a workout template into a week of the live
// program. A day of 0 keeps the template's day.
func (s *Server) handleLoadWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeekID string `json:"weekId"`
		Day    int    `json:"day"`
	}
	if !decode(w, r, &req) {
		return
	}
	id, err := s.ws.LoadWorkout(r.Context(), chi.URLParam(r, "id"), req.WeekID, req.Day)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleLoadInlineWorkout copies a workout sent in the body, rather than a
// library entry, into a live week.
func (s *Server) handleLoadInlineWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Workout models.Workout `json:"workout"`
		Day     int            `json:"day"`
	}
	if !decode(w, r, &req) {
		return
	}
	id, err := s.ws.LoadTemplateWorkout(req.Workout, chi.URLParam(r, "weekID"), req.Day)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleLoadWeek(w http.ResponseWriter, r *http.Request) {
	id, err := s.ws.LoadWeek(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleInstantiateProgram(w http.ResponseWriter, r *http.Request) {
	p, err := s.ws.InstantiateProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleDeleteWorkoutTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.DeleteWorkoutTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteWeekTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.DeleteWeekTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteProgramTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.DeleteProgramTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dry_run") == "true"
	result, err := s.alpha.Ingest(r.Context(), r.Body, dryRun)
	if err != nil {
		s.log.Error("alpha ingest error", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.metrics != nil && !result.DryRun {
		s.metrics.CounterImportedSessions.Add(float64(result.WorkoutsSaved))
		s.metrics.CounterMaxesRaised.Add(float64(len(result.MaxesRaised)))
	}
	writeJSON(w, http.StatusOK, result)
}
