// Package workspace ties the active program, the template library, the
// max-weight registry and the exercise catalog to one persistence store.
//
// A workspace models a single editor session. Every entry point takes the
// workspace lock, so concurrent HTTP and MCP callers see whole operations.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/repforge/repforge/internal/catalog"
	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/kvstore"
	"github.com/repforge/repforge/internal/library"
	"github.com/repforge/repforge/internal/maxweight"
	"github.com/repforge/repforge/internal/models"
	"github.com/repforge/repforge/internal/program"
	"github.com/repforge/repforge/internal/units"
)

// Workspace is the single owner of the live program.
type Workspace struct {
	mu sync.Mutex

	kv      kvstore.Store
	newID   ids.Generator
	log     *slog.Logger
	catalog *catalog.Catalog
	library *library.Library
	maxes   *maxweight.Registry
	program *program.Store

	// persistErr is the last failed write of the active program.
	persistErr error
}

// Open loads the registry and the active program from kv. When no program
// has been stored yet the sample program becomes the active one. A nil cat
// means the bundled catalog.
func Open(ctx context.Context, kv kvstore.Store, cat *catalog.Catalog, newID ids.Generator, log *slog.Logger) (*Workspace, error) {
	if cat == nil {
		cat = catalog.Default()
	}
	maxes, err := maxweight.Load(ctx, kv, log)
	if err != nil {
		return nil, err
	}
	w := &Workspace{
		kv:      kv,
		newID:   newID,
		log:     log,
		catalog: cat,
		library: library.New(kv, newID, log),
		maxes:   maxes,
	}

	stored, found, err := kvstore.GetJSON[models.Program](ctx, kv, kvstore.KeyActiveProgram)
	if err != nil {
		return nil, fmt.Errorf("loading active program: %w", err)
	}
	if !found {
		log.Info("no active program stored, starting from sample")
		w.activate(program.NewSample(newID, cat, log))
		return w, nil
	}

	s, err := program.FromProgram(stored, newID, cat, log)
	if err != nil {
		return nil, fmt.Errorf("loading active program: %w", err)
	}
	w.activate(s)
	log.Info("active program loaded", "id", s.ID(), "name", s.Name(), "weeks", s.WeekCount())
	return w, nil
}

// activate makes s the live program, persists it and keeps persisting it on
// every change.
func (w *Workspace) activate(s *program.Store) {
	s.OnChange(w.persist)
	w.program = s
	w.persist(s.Snapshot())
}

// persist writes the active program. Failures are logged and kept for Edit
// to report; the in-memory document stays authoritative until the next
// successful write.
func (w *Workspace) persist(p models.Program) {
	if err := kvstore.SetJSON(context.Background(), w.kv, kvstore.KeyActiveProgram, p); err != nil {
		w.log.Error("persisting active program", "id", p.ID, "error", err)
		w.persistErr = fmt.Errorf("persisting active program: %w", err)
		return
	}
	w.persistErr = nil
}

// Catalog returns the exercise catalog.
func (w *Workspace) Catalog() *catalog.Catalog { return w.catalog }

// Program returns a snapshot of the live program.
func (w *Workspace) Program() models.Program {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.program.Snapshot()
}

// Edit runs fn against the live program while holding the workspace lock.
// It returns fn's error, or the write failure of the last change fn made.
// The change itself stays applied in memory.
func (w *Workspace) Edit(fn func(s *program.Store) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.persistErr = nil
	if err := fn(w.program); err != nil {
		return err
	}
	return w.persistErr
}

// NewProgram replaces the live program with an empty one.
func (w *Workspace) NewProgram(name string) models.Program {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activate(program.New(name, w.newID, w.catalog, w.log))
	w.log.Info("new program created", "id", w.program.ID(), "name", name)
	return w.program.Snapshot()
}

// ResetToSample replaces the live program with the sample program.
func (w *Workspace) ResetToSample() models.Program {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.activate(program.NewSample(w.newID, w.catalog, w.log))
	return w.program.Snapshot()
}

// Library

// Workouts lists the workout library.
func (w *Workspace) Workouts(ctx context.Context) ([]models.Workout, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.Workouts(ctx)
}

// Weeks lists the week library.
func (w *Workspace) Weeks(ctx context.Context) ([]models.WeekTemplate, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.Weeks(ctx)
}

// Programs lists the program library.
func (w *Workspace) Programs(ctx context.Context) ([]models.Program, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.Programs(ctx)
}

// SaveWorkout saves a live workout to the library.
func (w *Workspace) SaveWorkout(ctx context.Context, workoutID, name string) (models.Workout, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	wo, ok := w.program.Workout(workoutID)
	if !ok {
		w.log.Warn("save workout: workout not found", "workout_id", workoutID)
		return models.Workout{}, fmt.Errorf("workout %q: %w", workoutID, library.ErrNotFound)
	}
	return w.library.SaveWorkout(ctx, wo, name)
}

// SaveTemplate saves a workout built outside the live program, such as an
// imported session, to the library.
func (w *Workspace) SaveTemplate(ctx context.Context, wo models.Workout, name string) (models.Workout, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.SaveWorkout(ctx, wo, name)
}

// SaveWeek saves a live week and its workouts to the library.
func (w *Workspace) SaveWeek(ctx context.Context, weekID, name string) (models.WeekTemplate, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.SaveWeek(ctx, w.program.Snapshot(), weekID, name)
}

// SaveProgram saves the live program to the library.
func (w *Workspace) SaveProgram(ctx context.Context, name string) (models.Program, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.SaveProgram(ctx, w.program.Snapshot(), name)
}

// LoadWorkout copies a workout-library entry into a live week.
func (w *Workspace) LoadWorkout(ctx context.Context, libraryID, weekID string, day int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.LoadWorkoutByID(ctx, w.program, libraryID, weekID, day)
}

// LoadWeek appends a week-library entry to the live program.
func (w *Workspace) LoadWeek(ctx context.Context, libraryID string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.LoadWeekByID(ctx, w.program, libraryID)
}

// LoadTemplateWorkout copies a workout that is not stored in the library into
// a live week.
func (w *Workspace) LoadTemplateWorkout(wo models.Workout, weekID string, day int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.LoadWorkout(w.program, wo, weekID, day)
}

// InstantiateProgram makes a fresh copy of a program-library entry the live
// program.
func (w *Workspace) InstantiateProgram(ctx context.Context, libraryID string) (models.Program, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, err := w.library.InstantiateProgram(ctx, libraryID)
	if err != nil {
		return models.Program{}, err
	}
	s, err := program.FromProgram(p, w.newID, w.catalog, w.log)
	if err != nil {
		return models.Program{}, fmt.Errorf("instantiating program %q: %w", libraryID, err)
	}
	w.activate(s)
	w.log.Info("program instantiated from library", "id", s.ID(), "source_id", libraryID)
	return s.Snapshot(), nil
}

// DeleteWorkoutTemplate removes a workout-library entry.
func (w *Workspace) DeleteWorkoutTemplate(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.DeleteWorkout(ctx, id)
}

// DeleteWeekTemplate removes a week-library entry.
func (w *Workspace) DeleteWeekTemplate(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.DeleteWeek(ctx, id)
}

// DeleteProgramTemplate removes a program-library entry.
func (w *Workspace) DeleteProgramTemplate(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.library.DeleteProgram(ctx, id)
}

// Max weights

// MaxWeights returns every record sorted by exercise name.
func (w *Workspace) MaxWeights() []models.MaxWeightRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxes.All()
}

// MaxWeight returns the record for an exercise.
func (w *Workspace) MaxWeight(exerciseName string) (models.MaxWeightRecord, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxes.Get(exerciseName)
}

// SetMaxWeight creates or overwrites a record.
func (w *Workspace) SetMaxWeight(ctx context.Context, exerciseName, weight string, unit units.Unit) (models.MaxWeightRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxes.Set(ctx, exerciseName, weight, unit)
}

// RaiseMaxWeight records weight only when it beats the current record.
func (w *Workspace) RaiseMaxWeight(ctx context.Context, exerciseName, weight string, unit units.Unit) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxes.Raise(ctx, exerciseName, weight, unit)
}

// RemoveMaxWeight deletes a record.
func (w *Workspace) RemoveMaxWeight(ctx context.Context, exerciseName string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxes.Remove(ctx, exerciseName)
}

// WeightToPercentage expresses weight as a percentage of the exercise's max.
func (w *Workspace) WeightToPercentage(weight, exerciseName string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxes.WeightToPercentage(weight, exerciseName)
}

// PercentageToWeight computes a percentage of the exercise's max.
func (w *Workspace) PercentageToWeight(percentage, exerciseName string, target units.Unit) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxes.PercentageToWeight(percentage, exerciseName, target)
}

// Templates is the part of a workspace an import writes to: the workout
// library and the max-weight registry. It never reads or replaces the active
// program.
type Templates struct {
	mu      sync.Mutex
	library *library.Library
	maxes   *maxweight.Registry
}

// OpenTemplates loads the registry from kv for an import run.
func OpenTemplates(ctx context.Context, kv kvstore.Store, newID ids.Generator, log *slog.Logger) (*Templates, error) {
	maxes, err := maxweight.Load(ctx, kv, log)
	if err != nil {
		return nil, err
	}
	return &Templates{library: library.New(kv, newID, log), maxes: maxes}, nil
}

// SaveTemplate saves a workout to the library.
func (t *Templates) SaveTemplate(ctx context.Context, wo models.Workout, name string) (models.Workout, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.library.SaveWorkout(ctx, wo, name)
}

// RaiseMaxWeight records weight only when it beats the current record.
func (t *Templates) RaiseMaxWeight(ctx context.Context, exerciseName, weight string, unit units.Unit) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.maxes.Raise(ctx, exerciseName, weight, unit)
}
