package program

import (
	"fmt"
	"slices"

	"github.com/repforge/repforge/internal/models"
)

// Kind is a grouping variant. Every variant is stored the same way: a header
// exercise with no sets followed by members sharing its circuit id.
type Kind string

const (
	KindCircuit  Kind = "circuit"
	KindSuperset Kind = "superset"
	KindEMOM     Kind = "emom"
	KindAMRAP    Kind = "amrap"
	KindTabata   Kind = "tabata"
)

type memberTemplate struct {
	name string
	reps string
	rest string
}

type circuitTemplate struct {
	header  string
	notes   string
	repType string
	members []memberTemplate
}

var circuitTemplates = map[Kind]circuitTemplate{
	KindCircuit: {
		header: "Circuit",
		notes:  "Perform the exercises in sequence with minimal rest between them.",
		members: []memberTemplate{
			{name: "Exercise 1", reps: "10", rest: "30s"},
			{name: "Exercise 2", reps: "10", rest: "30s"},
		},
	},
	KindSuperset: {
		header: "Superset",
		notes:  "Perform the exercises back-to-back with no rest in between. Rest after the second exercise.",
		members: []memberTemplate{
			{name: "Exercise A", reps: "10", rest: "0s"},
			{name: "Exercise B", reps: "10", rest: "60s"},
		},
	},
	KindEMOM: {
		header: "EMOM - 10 min",
		notes:  "Every minute on the minute: start the prescribed reps at the top of each minute and rest for the remainder.",
		members: []memberTemplate{
			{name: "Even Minutes", reps: "10", rest: "0s"},
			{name: "Odd Minutes", reps: "8", rest: "0s"},
		},
	},
	KindAMRAP: {
		header: "AMRAP - 12 min",
		notes:  "As many rounds as possible: cycle through the exercises until time runs out.",
		members: []memberTemplate{
			{name: "Exercise 1", reps: "10", rest: "0s"},
			{name: "Exercise 2", reps: "15", rest: "0s"},
			{name: "Exercise 3", reps: "20", rest: "0s"},
		},
	},
	KindTabata: {
		header:  "Tabata - 4 min",
		notes:   "8 rounds of 20 seconds work followed by 10 seconds rest.",
		repType: "time",
		members: []memberTemplate{
			{name: "Tabata Exercise", reps: "20s", rest: "10s"},
		},
	},
}

// Kinds lists every grouping variant.
func Kinds() []Kind {
	return []Kind{KindCircuit, KindSuperset, KindEMOM, KindAMRAP, KindTabata}
}

// ParseKind validates a variant name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := circuitTemplates[k]; !ok {
		return "", fmt.Errorf("unknown circuit kind %q", s)
	}
	return k, nil
}

// AddCircuit appends a circuit: two members, 10 reps, 30s rest.
func (s *Store) AddCircuit(workoutID string) (string, bool) {
	return s.AddGroup(workoutID, KindCircuit)
}

// AddSuperset appends a superset: two members, no rest after the first.
func (s *Store) AddSuperset(workoutID string) (string, bool) {
	return s.AddGroup(workoutID, KindSuperset)
}

// AddEMOM appends a 10 minute EMOM with even and odd minute members.
func (s *Store) AddEMOM(workoutID string) (string, bool) {
	return s.AddGroup(workoutID, KindEMOM)
}

// AddAMRAP appends a 12 minute AMRAP with three members.
func (s *Store) AddAMRAP(workoutID string) (string, bool) {
	return s.AddGroup(workoutID, KindAMRAP)
}

// AddTabata appends a 4 minute Tabata with one timed member.
func (s *Store) AddTabata(workoutID string) (string, bool) {
	return s.AddGroup(workoutID, KindTabata)
}

// AddGroup appends the header and members of a grouping variant in a single
// append and returns the new circuit id.
func (s *Store) AddGroup(workoutID string, kind Kind) (string, bool) {
	tmpl, ok := circuitTemplates[kind]
	if !ok {
		s.log.Warn("add circuit: unknown kind", "kind", kind)
		return "", false
	}
	w, ok := s.workouts[workoutID]
	if !ok {
		s.log.Warn("add circuit: workout not found", "workout_id", workoutID)
		return "", false
	}

	circuitID := s.newID()
	batch := make([]models.Exercise, 0, len(tmpl.members)+1)
	batch = append(batch, models.Exercise{
		ID:          s.newID(),
		Name:        tmpl.header,
		Notes:       tmpl.notes,
		Sets:        []models.Set{},
		IsCircuit:   true,
		CircuitID:   circuitID,
		CircuitType: string(kind),
	})
	for _, m := range tmpl.members {
		batch = append(batch, s.circuitMember(circuitID, kind, tmpl, m))
	}

	w.Exercises = append(w.Exercises, batch...)
	idx := make([]string, len(batch))
	for i, ex := range batch {
		idx[i] = ex.ID
	}
	s.circuits[w.ID][circuitID] = idx
	s.changed()
	return circuitID, true
}

func (s *Store) circuitMember(circuitID string, kind Kind, tmpl circuitTemplate, m memberTemplate) models.Exercise {
	return models.Exercise{
		ID:          s.newID(),
		Name:        m.name,
		RepType:     tmpl.repType,
		IsInCircuit: true,
		CircuitID:   circuitID,
		CircuitType: string(kind),
		Sets: []models.Set{{
			ID:   s.newID(),
			Reps: m.reps,
			Rest: m.rest,
		}},
	}
}

// CircuitMembers returns the member exercise ids of a circuit, header excluded.
func (s *Store) CircuitMembers(workoutID, circuitID string) []string {
	w, ok := s.workouts[workoutID]
	if !ok {
		return nil
	}
	var out []string
	for _, id := range s.circuits[w.ID][circuitID] {
		if i := exerciseIndex(w, id); i >= 0 && !w.Exercises[i].IsCircuit {
			out = append(out, id)
		}
	}
	return out
}

// AddCircuitMember inserts a new member right after the circuit's last
// exercise. It is named after the variant's member scheme and takes the
// variant's defaults for that position.
func (s *Store) AddCircuitMember(workoutID, circuitID string) (string, bool) {
	w, ok := s.workouts[workoutID]
	if !ok {
		s.log.Warn("add circuit member: workout not found", "workout_id", workoutID)
		return "", false
	}
	idx := s.circuits[w.ID][circuitID]
	if len(idx) == 0 {
		s.log.Warn("add circuit member: circuit not found", "circuit_id", circuitID)
		return "", false
	}
	first := exerciseIndex(w, idx[0])
	if first < 0 {
		return "", false
	}
	kind := Kind(w.Exercises[first].CircuitType)
	tmpl, ok := circuitTemplates[kind]
	if !ok {
		tmpl = circuitTemplates[KindCircuit]
	}

	n := len(s.CircuitMembers(workoutID, circuitID)) + 1
	ex := s.circuitMember(circuitID, kind, tmpl, nthMember(kind, tmpl, n))

	last := exerciseIndex(w, idx[len(idx)-1])
	w.Exercises = slices.Insert(w.Exercises, last+1, ex)
	s.circuits[w.ID][circuitID] = append(idx, ex.ID)
	s.changed()
	return ex.ID, true
}

// DissolveCircuit removes a circuit's header and turns its members into
// standalone exercises.
func (s *Store) DissolveCircuit(workoutID, circuitID string) bool {
	w, ok := s.workouts[workoutID]
	if !ok {
		s.log.Warn("dissolve circuit: workout not found", "workout_id", workoutID)
		return false
	}
	if _, ok := s.circuits[w.ID][circuitID]; !ok {
		s.log.Warn("dissolve circuit: circuit not found", "circuit_id", circuitID)
		return false
	}
	w.Exercises = slices.DeleteFunc(w.Exercises, func(ex models.Exercise) bool {
		return ex.IsCircuit && ex.CircuitID == circuitID
	})
	for i := range w.Exercises {
		ex := &w.Exercises[i]
		if ex.CircuitID == circuitID {
			ex.IsInCircuit = false
			ex.CircuitID = ""
			ex.CircuitType = ""
		}
	}
	delete(s.circuits[w.ID], circuitID)
	s.changed()
	return true
}

// GroupExercises creates a group header named name just before the first of
// exerciseIDs and points each of them at it. Headers and exercises already in
// a group cannot be grouped.
func (s *Store) GroupExercises(workoutID, name string, exerciseIDs []string) (string, bool) {
	w, ok := s.workouts[workoutID]
	if !ok {
		s.log.Warn("group exercises: workout not found", "workout_id", workoutID)
		return "", false
	}
	if len(exerciseIDs) == 0 {
		return "", false
	}
	first := len(w.Exercises)
	want := map[string]bool{}
	for _, id := range exerciseIDs {
		i := exerciseIndex(w, id)
		if i < 0 {
			s.log.Warn("group exercises: exercise not found", "exercise_id", id)
			return "", false
		}
		ex := w.Exercises[i]
		if ex.IsCircuit || ex.IsGroup || ex.GroupID != "" {
			s.log.Warn("group exercises: exercise cannot join a group", "exercise_id", id)
			return "", false
		}
		want[id] = true
		first = min(first, i)
	}

	header := models.Exercise{ID: s.newID(), Name: name, Sets: []models.Set{}, IsGroup: true}
	var members []string
	for i := range w.Exercises {
		if want[w.Exercises[i].ID] {
			w.Exercises[i].GroupID = header.ID
			members = append(members, w.Exercises[i].ID)
		}
	}
	w.Exercises = slices.Insert(w.Exercises, first, header)
	s.groups[w.ID][header.ID] = members
	s.changed()
	return header.ID, true
}

// Ungroup removes a group header and releases its members.
func (s *Store) Ungroup(workoutID, groupID string) bool {
	w, ok := s.workouts[workoutID]
	if !ok {
		s.log.Warn("ungroup: workout not found", "workout_id", workoutID)
		return false
	}
	i := exerciseIndex(w, groupID)
	if i < 0 || !w.Exercises[i].IsGroup {
		s.log.Warn("ungroup: group not found", "group_id", groupID)
		return false
	}
	w.Exercises = slices.Delete(w.Exercises, i, i+1)
	for j := range w.Exercises {
		if w.Exercises[j].GroupID == groupID {
			w.Exercises[j].GroupID = ""
		}
	}
	delete(s.groups[w.ID], groupID)
	s.changed()
	return true
}

// nthMember returns the defaults for the n-th (1-based) member of a variant.
// Positions past the variant's own members reuse the first member's reps and
// rest and continue its naming.
func nthMember(kind Kind, tmpl circuitTemplate, n int) memberTemplate {
	if n <= len(tmpl.members) {
		return tmpl.members[n-1]
	}
	m := tmpl.members[0]
	switch {
	case kind == KindSuperset && n <= 26:
		m.name = "Exercise " + string(rune('A'+n-1))
	case kind == KindEMOM:
		m.name = fmt.Sprintf("Minute %d", n)
	case kind == KindTabata:
		m.name = fmt.Sprintf("Tabata Exercise %d", n)
	default:
		m.name = fmt.Sprintf("Exercise %d", n)
	}
	return m
}
