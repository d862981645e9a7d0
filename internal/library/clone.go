package library

import (
	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/models"
)

// remap hands out one fresh id per source id, so references that shared an id
// before cloning (circuit ids, group header ids) still share one afterwards.
type remap struct {
	newID ids.Generator
	seen  map[string]string
}

func newRemap(newID ids.Generator) *remap {
	return &remap{newID: newID, seen: map[string]string{}}
}

func (r *remap) id(old string) string {
	if old == "" {
		return ""
	}
	if id, ok := r.seen[old]; ok {
		return id
	}
	id := r.newID()
	r.seen[old] = id
	return id
}

// cloneWorkout deep-copies w with a fresh id for the workout and every
// exercise, set, circuit and group inside it, pointing it at weekID.
func cloneWorkout(newID ids.Generator, w models.Workout, weekID string) models.Workout {
	c := w.Clone()
	c.ID = newID()
	c.WeekID = weekID

	r := newRemap(newID)
	for i := range c.Exercises {
		ex := &c.Exercises[i]
		ex.ID = r.id(ex.ID)
		ex.CircuitID = r.id(ex.CircuitID)
		ex.GroupID = r.id(ex.GroupID)
		for j := range ex.Sets {
			ex.Sets[j].ID = newID()
		}
	}
	return c
}

// cloneWeek deep-copies a week and the workouts it references. Workouts are
// resolved through lookup; the first unresolved reference is returned with
// ok=false.
func cloneWeek(newID ids.Generator, wk models.Week, lookup func(string) (models.Workout, bool)) (models.WeekTemplate, string, bool) {
	out := models.WeekTemplate{Week: wk.Clone()}
	out.ID = newID()
	out.WorkoutIDs = make([]string, 0, len(wk.WorkoutIDs))
	out.Workouts = make([]models.Workout, 0, len(wk.WorkoutIDs))
	for _, workoutID := range wk.WorkoutIDs {
		w, ok := lookup(workoutID)
		if !ok {
			return models.WeekTemplate{}, workoutID, false
		}
		c := cloneWorkout(newID, w, out.ID)
		out.WorkoutIDs = append(out.WorkoutIDs, c.ID)
		out.Workouts = append(out.Workouts, c)
	}
	return out, "", true
}

// cloneProgram deep-copies p with fresh ids throughout, keeping every
// week-to-workout reference intact. Orphaned pool workouts are dropped.
func cloneProgram(newID ids.Generator, p models.Program) models.Program {
	out := models.Program{
		ID:       newID(),
		Name:     p.Name,
		Weeks:    make([]models.Week, 0, len(p.Weeks)),
		Workouts: []models.Workout{},
	}
	for _, wk := range p.Weeks {
		tmpl, _, ok := cloneWeek(newID, wk, p.FindWorkout)
		if !ok {
			// Keep the week even if the source had a dangling reference.
			tmpl, _, _ = cloneWeek(newID, resolvable(wk, p), p.FindWorkout)
		}
		out.Weeks = append(out.Weeks, tmpl.Week)
		out.Workouts = append(out.Workouts, tmpl.Workouts...)
	}
	return out
}

// resolvable returns wk without references missing from p's pool.
func resolvable(wk models.Week, p models.Program) models.Week {
	wk = wk.Clone()
	kept := wk.WorkoutIDs[:0]
	for _, id := range wk.WorkoutIDs {
		if _, ok := p.FindWorkout(id); ok {
			kept = append(kept, id)
		}
	}
	wk.WorkoutIDs = kept
	return wk
}
