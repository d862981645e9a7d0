package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/repforge/repforge/internal/library"
	"github.com/repforge/repforge/internal/maxweight"
	"github.com/repforge/repforge/internal/program"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// writeErr maps workspace errors onto status codes.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, maxweight.ErrNameRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// edit runs fn against the live program and writes whatever it returns. fn
// reports false when one of the ids in the request did not resolve.
func (s *Server) edit(w http.ResponseWriter, status int, fn func(p *program.Store) (any, bool)) {
	var (
		out any
		ok  bool
	)
	err := s.ws.Edit(func(p *program.Store) error {
		out, ok = fn(p)
		return nil
	})
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, status, out)
}

// created wraps a new id the way every create endpoint reports it.
func created(id string, ok bool) (any, bool) {
	return map[string]string{"id": id}, ok
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ws.Program())
}

func (s *Server) handleOrphans(w http.ResponseWriter, r *http.Request) {
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		return p.Orphans(), true
	})
}

func (s *Server) handleGetWeek(w http.ResponseWriter, r *http.Request) {
	weekID := chi.URLParam(r, "weekID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		wk, ok := p.Week(weekID)
		if !ok {
			return nil, false
		}
		return map[string]any{"week": wk, "workouts": p.WorkoutsInWeek(weekID)}, true
	})
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID := chi.URLParam(r, "workoutID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		return p.Workout(workoutID)
	})
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleNewProgram(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		req.Name = "New Program"
	}
	writeJSON(w, http.StatusCreated, s.ws.NewProgram(req.Name))
}

func (s *Server) handleResetToSample(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, s.ws.ResetToSample())
}

func (s *Server) handleRenameProgram(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decode(w, r, &req) {
		return
	}
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		p.Rename(req.Name)
		return p.Snapshot(), true
	})
}

func (s *Server) handlePruneOrphans(w http.ResponseWriter, r *http.Request) {
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		return map[string]int{"pruned": p.PruneOrphans()}, true
	})
}

// Weeks

func (s *Server) handleAddWeek(w http.ResponseWriter, r *http.Request) {
	s.edit(w, http.StatusCreated, func(p *program.Store) (any, bool) {
		return created(p.AddWeek(), true)
	})
}

func (s *Server) handleUpdateWeek(w http.ResponseWriter, r *http.Request) {
	var u program.WeekUpdate
	if !decode(w, r, &u) {
		return
	}
	weekID := chi.URLParam(r, "weekID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.UpdateWeek(weekID, u) {
			return nil, false
		}
		return p.Week(weekID)
	})
}

// handleDeleteWeek removes a week. With ?workouts=true the week's workouts
// leave the pool too.
func (s *Server) handleDeleteWeek(w http.ResponseWriter, r *http.Request) {
	weekID := chi.URLParam(r, "weekID")
	withWorkouts, _ := strconv.ParseBool(r.URL.Query().Get("workouts"))
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.DeleteWeek(weekID, withWorkouts) {
			return nil, false
		}
		return p.Snapshot(), true
	})
}

func (s *Server) handleMoveWeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if !decode(w, r, &req) {
		return
	}
	weekID := chi.URLParam(r, "weekID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.MoveWeek(weekID, req.Index) {
			return nil, false
		}
		return p.Weeks(), true
	})
}

// Workouts

func (s *Server) handleAddWorkout(w http.ResponseWriter, r *http.Request) {
	weekID := chi.URLParam(r, "weekID")
	s.edit(w, http.StatusCreated, func(p *program.Store) (any, bool) {
		return created(p.AddWorkout(weekID))
	})
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	weekID, workoutID := chi.URLParam(r, "weekID"), chi.URLParam(r, "workoutID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.DeleteWorkout(weekID, workoutID) {
			return nil, false
		}
		return p.Week(weekID)
	})
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	var u program.WorkoutUpdate
	if !decode(w, r, &u) {
		return
	}
	workoutID := chi.URLParam(r, "workoutID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.UpdateWorkout(workoutID, u) {
			return nil, false
		}
		return p.Workout(workoutID)
	})
}

func (s *Server) handleMoveWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"fromWeekId"`
		To   string `json:"toWeekId"`
	}
	if !decode(w, r, &req) {
		return
	}
	workoutID := chi.URLParam(r, "workoutID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.MoveWorkout(workoutID, req.From, req.To) {
			return nil, false
		}
		return p.Workout(workoutID)
	})
}

// Exercises and sets

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CatalogID string `json:"catalogId"`
	}
	if !decode(w, r, &req) {
		return
	}
	workoutID := chi.URLParam(r, "workoutID")
	s.edit(w, http.StatusCreated, func(p *program.Store) (any, bool) {
		return created(p.AddExercise(workoutID, req.CatalogID))
	})
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	var u program.ExerciseUpdate
	if !decode(w, r, &u) {
		return
	}
	workoutID, exerciseID := chi.URLParam(r, "workoutID"), chi.URLParam(r, "exerciseID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.UpdateExercise(workoutID, exerciseID, u) {
			return nil, false
		}
		return p.Exercise(workoutID, exerciseID)
	})
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	workoutID, exerciseID := chi.URLParam(r, "workoutID"), chi.URLParam(r, "exerciseID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.DeleteExercise(workoutID, exerciseID) {
			return nil, false
		}
		return p.Workout(workoutID)
	})
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	workoutID, exerciseID := chi.URLParam(r, "workoutID"), chi.URLParam(r, "exerciseID")
	s.edit(w, http.StatusCreated, func(p *program.Store) (any, bool) {
		return created(p.AddSet(workoutID, exerciseID))
	})
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var u program.SetUpdate
	if !decode(w, r, &u) {
		return
	}
	workoutID, exerciseID := chi.URLParam(r, "workoutID"), chi.URLParam(r, "exerciseID")
	setID := chi.URLParam(r, "setID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.UpdateSet(workoutID, exerciseID, setID, u) {
			return nil, false
		}
		return p.Exercise(workoutID, exerciseID)
	})
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	workoutID, exerciseID := chi.URLParam(r, "workoutID"), chi.URLParam(r, "exerciseID")
	setID := chi.URLParam(r, "setID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.DeleteSet(workoutID, exerciseID, setID) {
			return nil, false
		}
		return p.Exercise(workoutID, exerciseID)
	})
}

// Circuits and groups

func (s *Server) handleCircuitKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, program.Kinds())
}

func (s *Server) handleAddCircuit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Kind == "" {
		req.Kind = string(program.KindCircuit)
	}
	kind, err := program.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	workoutID := chi.URLParam(r, "workoutID")
	s.edit(w, http.StatusCreated, func(p *program.Store) (any, bool) {
		return created(p.AddGroup(workoutID, kind))
	})
}

func (s *Server) handleAddCircuitMember(w http.ResponseWriter, r *http.Request) {
	workoutID, circuitID := chi.URLParam(r, "workoutID"), chi.URLParam(r, "circuitID")
	s.edit(w, http.StatusCreated, func(p *program.Store) (any, bool) {
		return created(p.AddCircuitMember(workoutID, circuitID))
	})
}

func (s *Server) handleDissolveCircuit(w http.ResponseWriter, r *http.Request) {
	workoutID, circuitID := chi.URLParam(r, "workoutID"), chi.URLParam(r, "circuitID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.DissolveCircuit(workoutID, circuitID) {
			return nil, false
		}
		return p.Workout(workoutID)
	})
}

func (s *Server) handleGroupExercises(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string   `json:"name"`
		ExerciseIDs []string `json:"exerciseIds"`
	}
	if !decode(w, r, &req) {
		return
	}
	workoutID := chi.URLParam(r, "workoutID")
	s.edit(w, http.StatusCreated, func(p *program.Store) (any, bool) {
		return created(p.GroupExercises(workoutID, req.Name, req.ExerciseIDs))
	})
}

func (s *Server) handleUngroup(w http.ResponseWriter, r *http.Request) {
	workoutID, groupID := chi.URLParam(r, "workoutID"), chi.URLParam(r, "groupID")
	s.edit(w, http.StatusOK, func(p *program.Store) (any, bool) {
		if !p.Ungroup(workoutID, groupID) {
			return nil, false
		}
		return p.Workout(workoutID)
	})
}
