package models

import (
	"slices"
	"time"
)

// Program is the top-level training plan. Workouts is a flat pool; weeks
// reference pool entries by id.
type Program struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Weeks    []Week    `json:"weeks"`
	Workouts []Workout `json:"workouts"`
}

// Week is an ordered grouping of workouts. Order is zero-based.
type Week struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Order      int      `json:"order"`
	WorkoutIDs []string `json:"workoutIds"`
}

// Workout is a single training session on a 1-based day slot of its week.
type Workout struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Day       int        `json:"day"`
	WeekID    string     `json:"weekId"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise is one movement in a workout. Circuit headers carry IsCircuit and no
// sets; their members carry IsInCircuit and the same CircuitID. Group headers
// carry IsGroup, and members point at the header through GroupID.
type Exercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Sets        []Set  `json:"sets"`
	Notes       string `json:"notes"`
	RepType     string `json:"repType,omitempty"`
	IsCircuit   bool   `json:"isCircuit,omitempty"`
	IsInCircuit bool   `json:"isInCircuit,omitempty"`
	CircuitID   string `json:"circuitId,omitempty"`
	CircuitType string `json:"circuitType,omitempty"`
	GroupID     string `json:"groupId,omitempty"`
	IsGroup     bool   `json:"isGroup,omitempty"`
}

// Set is one prescribed unit of work. Fields are free-form text so that values
// like "10,8,8,6" or "60s" survive untouched.
type Set struct {
	ID        string `json:"id"`
	Reps      string `json:"reps"`
	Weight    string `json:"weight"`
	Intensity string `json:"intensity"`
	Rest      string `json:"rest"`
}

// WeekTemplate is a week-library entry: the week plus the workouts it references.
type WeekTemplate struct {
	Week
	Workouts []Workout `json:"workouts"`
}

// MaxWeightRecord is a user's best known performance for one exercise.
type MaxWeightRecord struct {
	ExerciseName string    `json:"exerciseName"`
	MaxWeight    string    `json:"maxWeight"`
	WeightType   string    `json:"weightType"`
	Date         time.Time `json:"date"`
}

// Clone returns a copy of e that shares no slices with it.
func (e Exercise) Clone() Exercise {
	e.Sets = slices.Clone(e.Sets)
	return e
}

// Clone returns a copy of w that shares no slices with it.
func (w Workout) Clone() Workout {
	exercises := make([]Exercise, len(w.Exercises))
	for i, ex := range w.Exercises {
		exercises[i] = ex.Clone()
	}
	w.Exercises = exercises
	return w
}

// Clone returns a copy of wk that shares no slices with it.
func (wk Week) Clone() Week {
	wk.WorkoutIDs = slices.Clone(wk.WorkoutIDs)
	if wk.WorkoutIDs == nil {
		wk.WorkoutIDs = []string{}
	}
	return wk
}

// Clone returns a copy of p that shares no slices with it.
func (p Program) Clone() Program {
	weeks := make([]Week, len(p.Weeks))
	for i, wk := range p.Weeks {
		weeks[i] = wk.Clone()
	}
	workouts := make([]Workout, len(p.Workouts))
	for i, w := range p.Workouts {
		workouts[i] = w.Clone()
	}
	p.Weeks = weeks
	p.Workouts = workouts
	return p
}

// FindWorkout returns the pool entry with the given id.
func (p Program) FindWorkout(id string) (Workout, bool) {
	for _, w := range p.Workouts {
		if w.ID == id {
			return w, true
		}
	}
	return Workout{}, false
}

// FindWeek returns the week with the given id.
func (p Program) FindWeek(id string) (Week, bool) {
	for _, wk := range p.Weeks {
		if wk.ID == id {
			return wk, true
		}
	}
	return Week{}, false
}

// IDs returns every identifier reachable from p: program, weeks, workouts,
// exercises and sets.
func (p Program) IDs() []string {
	out := []string{p.ID}
	for _, wk := range p.Weeks {
		out = append(out, wk.ID)
	}
	for _, w := range p.Workouts {
		out = append(out, w.IDs()...)
	}
	return out
}

// IDs returns the workout id followed by every exercise and set id in it.
func (w Workout) IDs() []string {
	out := []string{w.ID}
	for _, ex := range w.Exercises {
		out = append(out, ex.ID)
		for _, s := range ex.Sets {
			out = append(out, s.ID)
		}
	}
	return out
}
