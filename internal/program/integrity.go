package program

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks the document's referential integrity:
//   - every week reference resolves in the workout pool;
//   - every referenced workout points back at the one week that lists it;
//   - every circuit member shares its circuit id with exactly one header in
//     the same workout, and every group member names a group header there;
//   - the circuit and group indexes hold exactly the members the exercise
//     lists carry;
//   - no id is used twice.
//
// Orphaned pool workouts (left behind by DeleteWorkout) are not checked
// against week back-references.
func (s *Store) Validate() error {
	var errs []error

	owner := map[string]string{}
	for _, weekID := range s.weekOrder {
		wk := s.weeks[weekID]
		for _, workoutID := range wk.WorkoutIDs {
			w, ok := s.workouts[workoutID]
			if !ok {
				errs = append(errs, fmt.Errorf("week %q references missing workout %q", weekID, workoutID))
				continue
			}
			if prev, dup := owner[workoutID]; dup {
				errs = append(errs, fmt.Errorf("workout %q listed by weeks %q and %q", workoutID, prev, weekID))
				continue
			}
			owner[workoutID] = weekID
			if w.WeekID != weekID {
				errs = append(errs, fmt.Errorf("workout %q points at week %q but is listed by %q", workoutID, w.WeekID, weekID))
			}
		}
	}

	for _, workoutID := range s.poolOrder {
		w := s.workouts[workoutID]
		headers := map[string]int{}
		groupHeaders := map[string]bool{}
		for _, ex := range w.Exercises {
			if ex.IsCircuit {
				headers[ex.CircuitID]++
			}
			if ex.IsGroup {
				groupHeaders[ex.ID] = true
			}
		}
		for _, ex := range w.Exercises {
			if ex.IsInCircuit {
				switch {
				case ex.CircuitID == "":
					errs = append(errs, fmt.Errorf("workout %q: circuit member %q has no circuit id", workoutID, ex.ID))
				case headers[ex.CircuitID] != 1:
					errs = append(errs, fmt.Errorf("workout %q: circuit member %q has %d headers for circuit %q",
						workoutID, ex.ID, headers[ex.CircuitID], ex.CircuitID))
				}
			}
			if ex.GroupID != "" && !groupHeaders[ex.GroupID] {
				errs = append(errs, fmt.Errorf("workout %q: exercise %q references missing group %q", workoutID, ex.ID, ex.GroupID))
			}
		}

		circuits, groups := buildIndexes(w)
		if key, ok := sameIndex(s.circuits[workoutID], circuits); !ok {
			errs = append(errs, fmt.Errorf("workout %q: circuit index out of step for %q", workoutID, key))
		}
		if key, ok := sameIndex(s.groups[workoutID], groups); !ok {
			errs = append(errs, fmt.Errorf("workout %q: group index out of step for %q", workoutID, key))
		}
	}

	seen := map[string]bool{}
	check := func(id string) {
		if id == "" {
			errs = append(errs, errors.New("empty id"))
			return
		}
		if seen[id] {
			errs = append(errs, fmt.Errorf("duplicate id %q", id))
		}
		seen[id] = true
	}
	check(s.id)
	for _, weekID := range s.weekOrder {
		check(weekID)
	}
	for _, workoutID := range s.poolOrder {
		for _, id := range s.workouts[workoutID].IDs() {
			check(id)
		}
	}

	return errors.Join(errs...)
}

// sameIndex reports whether got and want hold the same members per key,
// ignoring order. On a mismatch it returns the first differing key.
func sameIndex(got, want memberIndex) (string, bool) {
	keys := make([]string, 0, len(got)+len(want))
	for k := range got {
		keys = append(keys, k)
	}
	for k := range want {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range slices.Compact(keys) {
		a, b := slices.Clone(got[k]), slices.Clone(want[k])
		slices.Sort(a)
		slices.Sort(b)
		if !slices.Equal(a, b) {
			return k, false
		}
	}
	return "", true
}
