// Package program holds the live training-program document and every
// structural operation on it.
//
// Weeks and workouts are kept in id maps with separate order slices, so a
// week's workout references are plain map lookups. Each workout also carries
// an index from circuit id to the ids of its header and members, and from group
// id to the ids of its members, maintained alongside the exercise list.
//
// Operations that receive an id that does not resolve log a warning and return
// a sentinel ("" or false); they never panic and never leave a dangling
// reference behind.
package program

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/repforge/repforge/internal/catalog"
	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/models"
)

// Catalog resolves catalog exercise ids for AddExercise.
type Catalog interface {
	Lookup(id string) (catalog.Entry, bool)
}

// memberIndex maps a circuit or group id to exercise ids in list order.
type memberIndex map[string][]string

// Store owns one mutable Program. It is not safe for concurrent use; callers
// that share a Store must serialize access.
type Store struct {
	id   string
	name string

	weekOrder []string
	weeks     map[string]*models.Week
	poolOrder []string
	workouts  map[string]*models.Workout

	circuits map[string]memberIndex // workout id -> circuit id -> header and members
	groups   map[string]memberIndex // workout id -> group id -> members

	newID     ids.Generator
	catalog   Catalog
	log       *slog.Logger
	observers []func(models.Program)
}

// New creates an empty program. cat may be nil, in which case AddExercise
// always appends a blank exercise.
func New(name string, newID ids.Generator, cat Catalog, log *slog.Logger) *Store {
	s := newStore(newID, cat, log)
	s.id = newID()
	s.name = name
	return s
}

func newStore(newID ids.Generator, cat Catalog, log *slog.Logger) *Store {
	return &Store{
		weeks:    map[string]*models.Week{},
		workouts: map[string]*models.Workout{},
		circuits: map[string]memberIndex{},
		groups:   map[string]memberIndex{},
		newID:    newID,
		catalog:  cat,
		log:      log,
	}
}

// FromProgram builds a Store from a stored document, rebuilding the circuit
// and group indexes. Documents that break referential integrity are rejected.
func FromProgram(p models.Program, newID ids.Generator, cat Catalog, log *slog.Logger) (*Store, error) {
	s := newStore(newID, cat, log)
	s.id = p.ID
	s.name = p.Name

	p = p.Clone()
	for i := range p.Weeks {
		wk := p.Weeks[i]
		if _, dup := s.weeks[wk.ID]; dup {
			return nil, fmt.Errorf("duplicate week id %q", wk.ID)
		}
		s.weeks[wk.ID] = &wk
		s.weekOrder = append(s.weekOrder, wk.ID)
	}
	for i := range p.Workouts {
		w := p.Workouts[i]
		if _, dup := s.workouts[w.ID]; dup {
			return nil, fmt.Errorf("duplicate workout id %q", w.ID)
		}
		s.workouts[w.ID] = &w
		s.poolOrder = append(s.poolOrder, w.ID)
		s.reindex(&w)
	}
	s.renumberWeeks()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid program %q: %w", p.ID, err)
	}
	return s, nil
}

// OnChange registers fn to receive a snapshot after every successful mutation.
func (s *Store) OnChange(fn func(models.Program)) {
	s.observers = append(s.observers, fn)
}

func (s *Store) changed() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}

// ID returns the program id.
func (s *Store) ID() string { return s.id }

// Name returns the program name.
func (s *Store) Name() string { return s.name }

// Rename sets the program name.
func (s *Store) Rename(name string) {
	s.name = name
	s.changed()
}

// Snapshot returns a deep copy of the document with weeks in order and the
// workout pool in insertion order.
func (s *Store) Snapshot() models.Program {
	p := models.Program{
		ID:       s.id,
		Name:     s.name,
		Weeks:    make([]models.Week, 0, len(s.weekOrder)),
		Workouts: make([]models.Workout, 0, len(s.poolOrder)),
	}
	for _, id := range s.weekOrder {
		p.Weeks = append(p.Weeks, s.weeks[id].Clone())
	}
	for _, id := range s.poolOrder {
		p.Workouts = append(p.Workouts, s.workouts[id].Clone())
	}
	return p
}

// WeekCount returns the number of weeks.
func (s *Store) WeekCount() int { return len(s.weekOrder) }

// Weeks returns copies of all weeks in order.
func (s *Store) Weeks() []models.Week {
	out := make([]models.Week, 0, len(s.weekOrder))
	for _, id := range s.weekOrder {
		out = append(out, s.weeks[id].Clone())
	}
	return out
}

// Week returns a copy of the week with the given id.
func (s *Store) Week(id string) (models.Week, bool) {
	wk, ok := s.weeks[id]
	if !ok {
		return models.Week{}, false
	}
	return wk.Clone(), true
}

// Workout returns a copy of the pool workout with the given id.
func (s *Store) Workout(id string) (models.Workout, bool) {
	w, ok := s.workouts[id]
	if !ok {
		return models.Workout{}, false
	}
	return w.Clone(), true
}

// Exercise returns a copy of one exercise in a workout.
func (s *Store) Exercise(workoutID, exerciseID string) (models.Exercise, bool) {
	w, ok := s.workouts[workoutID]
	if !ok {
		return models.Exercise{}, false
	}
	i := exerciseIndex(w, exerciseID)
	if i < 0 {
		return models.Exercise{}, false
	}
	return w.Exercises[i].Clone(), true
}

// WorkoutsInWeek returns copies of the workouts a week references, in order.
func (s *Store) WorkoutsInWeek(weekID string) []models.Workout {
	wk, ok := s.weeks[weekID]
	if !ok {
		return nil
	}
	out := make([]models.Workout, 0, len(wk.WorkoutIDs))
	for _, id := range wk.WorkoutIDs {
		if w, ok := s.workouts[id]; ok {
			out = append(out, w.Clone())
		}
	}
	return out
}

func (s *Store) blankSet() models.Set {
	return models.Set{ID: s.newID()}
}

func (s *Store) blankExercise() models.Exercise {
	return models.Exercise{
		ID:   s.newID(),
		Sets: []models.Set{s.blankSet()},
	}
}

func (s *Store) defaultWorkout(weekID string, day int) *models.Workout {
	return &models.Workout{
		ID:        s.newID(),
		Name:      fmt.Sprintf("Day %d", day),
		Day:       day,
		WeekID:    weekID,
		Exercises: []models.Exercise{s.blankExercise()},
	}
}

func (s *Store) addToPool(w *models.Workout) {
	s.workouts[w.ID] = w
	s.poolOrder = append(s.poolOrder, w.ID)
	s.reindex(w)
}

// AddWeek appends a week with the next order and one default workout on day 1.
func (s *Store) AddWeek() string {
	order := len(s.weekOrder)
	wk := &models.Week{
		ID:         s.newID(),
		Name:       fmt.Sprintf("Week %d", order+1),
		Order:      order,
		WorkoutIDs: []string{},
	}
	w := s.defaultWorkout(wk.ID, 1)
	wk.WorkoutIDs = append(wk.WorkoutIDs, w.ID)

	s.weeks[wk.ID] = wk
	s.weekOrder = append(s.weekOrder, wk.ID)
	s.addToPool(w)
	s.changed()
	return wk.ID
}

// AddWorkout appends a default workout to a week. Its day is the week's
// workout count plus one, moved past any slot already taken.
func (s *Store) AddWorkout(weekID string) (string, bool) {
	wk, ok := s.weeks[weekID]
	if !ok {
		s.log.Warn("add workout: week not found", "week_id", weekID)
		return "", false
	}
	taken := map[int]bool{}
	for _, id := range wk.WorkoutIDs {
		if w, ok := s.workouts[id]; ok {
			taken[w.Day] = true
		}
	}
	day := len(wk.WorkoutIDs) + 1
	for taken[day] {
		day++
	}

	w := s.defaultWorkout(wk.ID, day)
	s.addToPool(w)
	wk.WorkoutIDs = append(wk.WorkoutIDs, w.ID)
	s.changed()
	return w.ID, true
}

// AddExercise appends an exercise to a workout. When catalogID resolves, the
// exercise takes the catalog entry's name and description; otherwise it is blank.
// Either way it starts with one empty set.
func (s *Store) AddExercise(workoutID, catalogID string) (string, bool) {
	w, ok := s.workouts[workoutID]
	if !ok {
		s.log.Warn("add exercise: workout not found", "workout_id", workoutID)
		return "", false
	}
	ex := s.blankExercise()
	if catalogID != "" && s.catalog != nil {
		if entry, ok := s.catalog.Lookup(catalogID); ok {
			ex.Name = entry.Name
			ex.Notes = entry.Description
		} else {
			s.log.Warn("add exercise: catalog entry not found", "catalog_id", catalogID)
		}
	}
	w.Exercises = append(w.Exercises, ex)
	s.changed()
	return ex.ID, true
}

// WeekUpdate is a partial update; nil fields are left unchanged.
type WeekUpdate struct {
	Name *string `json:"name,omitempty"`
}

// WorkoutUpdate is a partial update; nil fields are left unchanged.
type WorkoutUpdate struct {
	Name *string `json:"name,omitempty"`
	Day  *int    `json:"day,omitempty"`
}

// ExerciseUpdate is a partial update; nil fields are left unchanged. Circuit
// and group membership are changed only through the grouping operations.
type ExerciseUpdate struct {
	Name    *string `json:"name,omitempty"`
	Notes   *string `json:"notes,omitempty"`
	RepType *string `json:"repType,omitempty"`
}

// SetUpdate is a partial update; nil fields are left unchanged.
type SetUpdate struct {
	Reps      *string `json:"reps,omitempty"`
	Weight    *string `json:"weight,omitempty"`
	Intensity *string `json:"intensity,omitempty"`
	Rest      *string `json:"rest,omitempty"`
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// UpdateWeek merges u into the week.
func (s *Store) UpdateWeek(weekID string, u WeekUpdate) bool {
	wk, ok := s.weeks[weekID]
	if !ok {
		s.log.Warn("update week: week not found", "week_id", weekID)
		return false
	}
	assign(&wk.Name, u.Name)
	s.changed()
	return true
}

// UpdateWorkout merges u into the workout.
func (s *Store) UpdateWorkout(workoutID string, u WorkoutUpdate) bool {
	w, ok := s.workouts[workoutID]
	if !ok {
		s.log.Warn("update workout: workout not found", "workout_id", workoutID)
		return false
	}
	assign(&w.Name, u.Name)
	assign(&w.Day, u.Day)
	s.changed()
	return true
}

// UpdateExercise merges u into the exercise.
func (s *Store) UpdateExercise(workoutID, exerciseID string, u ExerciseUpdate) bool {
	ex := s.exercise(workoutID, exerciseID, "update exercise")
	if ex == nil {
		return false
	}
	assign(&ex.Name, u.Name)
	assign(&ex.Notes, u.Notes)
	assign(&ex.RepType, u.RepType)
	s.changed()
	return true
}

// UpdateSet merges u into the set.
func (s *Store) UpdateSet(workoutID, exerciseID, setID string, u SetUpdate) bool {
	ex := s.exercise(workoutID, exerciseID, "update set")
	if ex == nil {
		return false
	}
	i := slices.IndexFunc(ex.Sets, func(set models.Set) bool { return set.ID == setID })
	if i < 0 {
		s.log.Warn("update set: set not found", "set_id", setID)
		return false
	}
	set := &ex.Sets[i]
	assign(&set.Reps, u.Reps)
	assign(&set.Weight, u.Weight)
	assign(&set.Intensity, u.Intensity)
	assign(&set.Rest, u.Rest)
	s.changed()
	return true
}

// AddSet appends a set carrying over the previous set's prescription.
// Circuit and group headers hold no sets.
func (s *Store) AddSet(workoutID, exerciseID string) (string, bool) {
	ex := s.exercise(workoutID, exerciseID, "add set")
	if ex == nil {
		return "", false
	}
	if ex.IsCircuit || ex.IsGroup {
		s.log.Warn("add set: headers hold no sets", "exercise_id", exerciseID)
		return "", false
	}
	set := s.blankSet()
	if n := len(ex.Sets); n > 0 {
		prev := ex.Sets[n-1]
		prev.ID = set.ID
		set = prev
	}
	ex.Sets = append(ex.Sets, set)
	s.changed()
	return set.ID, true
}

// DeleteSet removes a set. An exercise may end up with no sets.
func (s *Store) DeleteSet(workoutID, exerciseID, setID string) bool {
	ex := s.exercise(workoutID, exerciseID, "delete set")
	if ex == nil {
		return false
	}
	i := slices.IndexFunc(ex.Sets, func(set models.Set) bool { return set.ID == setID })
	if i < 0 {
		s.log.Warn("delete set: set not found", "set_id", setID)
		return false
	}
	ex.Sets = slices.Delete(ex.Sets, i, i+1)
	s.changed()
	return true
}

// DeleteExercise removes an exercise. Deleting a circuit header also removes
// every exercise sharing its circuit id; deleting a group header also removes
// every exercise whose group id is the header's id.
func (s *Store) DeleteExercise(workoutID, exerciseID string) bool {
	w, ok := s.workouts[workoutID]
	if !ok {
		s.log.Warn("delete exercise: workout not found", "workout_id", workoutID)
		return false
	}
	if exerciseIndex(w, exerciseID) < 0 {
		s.log.Warn("delete exercise: exercise not found", "workout_id", workoutID, "exercise_id", exerciseID)
		return false
	}

	// Cascade through headers until the set is closed.
	doomed := map[string]bool{}
	queue := []string{exerciseID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if doomed[id] {
			continue
		}
		doomed[id] = true
		i := exerciseIndex(w, id)
		if i < 0 {
			continue
		}
		ex := w.Exercises[i]
		if ex.IsCircuit {
			queue = append(queue, s.circuits[w.ID][ex.CircuitID]...)
		}
		if ex.IsGroup {
			queue = append(queue, s.groups[w.ID][ex.ID]...)
		}
	}

	s.removeExercises(w, doomed)
	s.changed()
	return true
}

// removeExercises drops the given exercises and keeps the indexes in step.
func (s *Store) removeExercises(w *models.Workout, doomed map[string]bool) {
	kept := w.Exercises[:0]
	for _, ex := range w.Exercises {
		if !doomed[ex.ID] {
			kept = append(kept, ex)
			continue
		}
		if ex.CircuitID != "" {
			s.unindex(s.circuits, w.ID, ex.CircuitID, ex.ID)
		}
		if ex.GroupID != "" {
			s.unindex(s.groups, w.ID, ex.GroupID, ex.ID)
		}
		if ex.IsCircuit {
			delete(s.circuits[w.ID], ex.CircuitID)
		}
		if ex.IsGroup {
			delete(s.groups[w.ID], ex.ID)
		}
	}
	clear(w.Exercises[len(kept):])
	w.Exercises = kept
}

// DeleteWorkout unlinks a workout from its week. The workout stays in the pool
// as an orphan until PruneOrphans reclaims it.
func (s *Store) DeleteWorkout(weekID, workoutID string) bool {
	wk, ok := s.weeks[weekID]
	if !ok {
		s.log.Warn("delete workout: week not found", "week_id", weekID)
		return false
	}
	i := slices.Index(wk.WorkoutIDs, workoutID)
	if i < 0 {
		s.log.Warn("delete workout: workout not in week", "week_id", weekID, "workout_id", workoutID)
		return false
	}
	wk.WorkoutIDs = slices.Delete(wk.WorkoutIDs, i, i+1)
	s.changed()
	return true
}

// DeleteWeek removes a week. Its workouts stay in the pool as orphans unless
// withWorkouts is set, in which case they are removed too.
func (s *Store) DeleteWeek(weekID string, withWorkouts bool) bool {
	wk, ok := s.weeks[weekID]
	if !ok {
		s.log.Warn("delete week: week not found", "week_id", weekID)
		return false
	}
	delete(s.weeks, weekID)
	s.weekOrder = slices.DeleteFunc(s.weekOrder, func(id string) bool { return id == weekID })
	s.renumberWeeks()
	if withWorkouts {
		s.dropFromPool(wk.WorkoutIDs)
	}
	s.changed()
	return true
}

// Orphans returns the ids of pool workouts no week references.
func (s *Store) Orphans() []string {
	referenced := map[string]bool{}
	for _, wk := range s.weeks {
		for _, id := range wk.WorkoutIDs {
			referenced[id] = true
		}
	}
	var out []string
	for _, id := range s.poolOrder {
		if !referenced[id] {
			out = append(out, id)
		}
	}
	return out
}

// PruneOrphans removes every unreferenced workout from the pool and returns
// how many were reclaimed.
func (s *Store) PruneOrphans() int {
	orphans := s.Orphans()
	if len(orphans) == 0 {
		return 0
	}
	s.dropFromPool(orphans)
	s.changed()
	return len(orphans)
}

func (s *Store) dropFromPool(workoutIDs []string) {
	drop := map[string]bool{}
	for _, id := range workoutIDs {
		drop[id] = true
		delete(s.workouts, id)
		delete(s.circuits, id)
		delete(s.groups, id)
	}
	s.poolOrder = slices.DeleteFunc(s.poolOrder, func(id string) bool { return drop[id] })
}

// MoveWorkout relinks a workout from one week to another, appending it to the
// destination. Ids and the workout's day are unchanged.
func (s *Store) MoveWorkout(workoutID, fromWeekID, toWeekID string) bool {
	from, ok := s.weeks[fromWeekID]
	if !ok {
		s.log.Warn("move workout: source week not found", "week_id", fromWeekID)
		return false
	}
	to, ok := s.weeks[toWeekID]
	if !ok {
		s.log.Warn("move workout: destination week not found", "week_id", toWeekID)
		return false
	}
	i := slices.Index(from.WorkoutIDs, workoutID)
	if i < 0 {
		s.log.Warn("move workout: workout not in source week", "week_id", fromWeekID, "workout_id", workoutID)
		return false
	}
	if from == to {
		return true
	}
	from.WorkoutIDs = slices.Delete(from.WorkoutIDs, i, i+1)
	to.WorkoutIDs = append(to.WorkoutIDs, workoutID)
	s.workouts[workoutID].WeekID = to.ID
	s.changed()
	return true
}

// MoveWeek moves a week to newIndex (clamped to range) and renumbers orders.
func (s *Store) MoveWeek(weekID string, newIndex int) bool {
	i := slices.Index(s.weekOrder, weekID)
	if i < 0 {
		s.log.Warn("move week: week not found", "week_id", weekID)
		return false
	}
	newIndex = max(0, min(newIndex, len(s.weekOrder)-1))
	s.weekOrder = slices.Delete(s.weekOrder, i, i+1)
	s.weekOrder = slices.Insert(s.weekOrder, newIndex, weekID)
	s.renumberWeeks()
	s.changed()
	return true
}

func (s *Store) renumberWeeks() {
	for i, id := range s.weekOrder {
		s.weeks[id].Order = i
	}
}

// InsertWorkout adds a fully formed workout to the pool and links it into a
// week. It refuses workouts whose ids collide with the document.
func (s *Store) InsertWorkout(w models.Workout, weekID string) bool {
	wk, ok := s.weeks[weekID]
	if !ok {
		s.log.Warn("insert workout: week not found", "week_id", weekID)
		return false
	}
	if id, clash := s.collides(w.IDs()); clash {
		s.log.Warn("insert workout: id already in program", "id", id)
		return false
	}
	w = w.Clone()
	w.WeekID = wk.ID
	s.addToPool(&w)
	wk.WorkoutIDs = append(wk.WorkoutIDs, w.ID)
	s.changed()
	return true
}

// InsertWeek appends a week together with the workouts it references. Every
// workout must point back at the week and every reference must resolve among
// the given workouts; colliding ids are refused.
func (s *Store) InsertWeek(wk models.Week, workouts []models.Workout) bool {
	incoming := []string{wk.ID}
	byID := map[string]bool{}
	for _, w := range workouts {
		if w.WeekID != wk.ID {
			s.log.Warn("insert week: workout points at another week", "workout_id", w.ID, "week_id", w.WeekID)
			return false
		}
		byID[w.ID] = true
		incoming = append(incoming, w.IDs()...)
	}
	for _, id := range wk.WorkoutIDs {
		if !byID[id] {
			s.log.Warn("insert week: unresolved workout reference", "workout_id", id)
			return false
		}
	}
	if id, clash := s.collides(incoming); clash {
		s.log.Warn("insert week: id already in program", "id", id)
		return false
	}

	wk = wk.Clone()
	s.weeks[wk.ID] = &wk
	s.weekOrder = append(s.weekOrder, wk.ID)
	s.renumberWeeks()
	for _, w := range workouts {
		w = w.Clone()
		s.addToPool(&w)
	}
	s.changed()
	return true
}

// collides reports the first candidate id already used in the document, or
// repeated within candidates.
func (s *Store) collides(candidates []string) (string, bool) {
	existing := s.idSet()
	for _, id := range candidates {
		if existing[id] {
			return id, true
		}
		existing[id] = true
	}
	return "", false
}

func (s *Store) idSet() map[string]bool {
	set := map[string]bool{s.id: true}
	for id := range s.weeks {
		set[id] = true
	}
	for _, w := range s.workouts {
		for _, id := range w.IDs() {
			set[id] = true
		}
	}
	return set
}

// exercise resolves a mutable exercise, logging under op when it cannot.
func (s *Store) exercise(workoutID, exerciseID, op string) *models.Exercise {
	w, ok := s.workouts[workoutID]
	if !ok {
		s.log.Warn(op+": workout not found", "workout_id", workoutID)
		return nil
	}
	i := exerciseIndex(w, exerciseID)
	if i < 0 {
		s.log.Warn(op+": exercise not found", "workout_id", workoutID, "exercise_id", exerciseID)
		return nil
	}
	return &w.Exercises[i]
}

func exerciseIndex(w *models.Workout, exerciseID string) int {
	return slices.IndexFunc(w.Exercises, func(ex models.Exercise) bool { return ex.ID == exerciseID })
}

// reindex rebuilds a workout's circuit and group indexes from its exercise list.
func (s *Store) reindex(w *models.Workout) {
	s.circuits[w.ID], s.groups[w.ID] = buildIndexes(w)
}

func buildIndexes(w *models.Workout) (circuits, groups memberIndex) {
	circuits = memberIndex{}
	groups = memberIndex{}
	for _, ex := range w.Exercises {
		if ex.CircuitID != "" {
			circuits[ex.CircuitID] = append(circuits[ex.CircuitID], ex.ID)
		}
		if ex.GroupID != "" {
			groups[ex.GroupID] = append(groups[ex.GroupID], ex.ID)
		}
	}
	return circuits, groups
}

func (s *Store) unindex(idx map[string]memberIndex, workoutID, key, exerciseID string) {
	members, ok := idx[workoutID][key]
	if !ok {
		return
	}
	members = slices.DeleteFunc(members, func(id string) bool { return id == exerciseID })
	if len(members) == 0 {
		delete(idx[workoutID], key)
		return
	}
	idx[workoutID][key] = members
}
