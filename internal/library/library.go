// Package library saves workouts, weeks and programs as reusable templates and
// loads them back into a live program.
//
// Every collection is a single JSON array stored under its own key and is
// rewritten whole on each change. Both directions deep-clone with fresh ids,
// so a template and the programs built from it never share an identifier.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/kvstore"
	"github.com/repforge/repforge/internal/models"
)

// ErrNotFound is returned when a library entry, week or workout does not resolve.
var ErrNotFound = errors.New("not found")

// Target is the part of a live program that load operations write into.
type Target interface {
	WeekCount() int
	Week(id string) (models.Week, bool)
	InsertWorkout(w models.Workout, weekID string) bool
	InsertWeek(wk models.Week, workouts []models.Workout) bool
}

// Library reads and writes the three template collections.
type Library struct {
	kv    kvstore.Store
	newID ids.Generator
	log   *slog.Logger
}

// New creates a Library over kv.
func New(kv kvstore.Store, newID ids.Generator, log *slog.Logger) *Library {
	return &Library{kv: kv, newID: newID, log: log}
}

func list[T any](ctx context.Context, kv kvstore.Store, key string) ([]T, error) {
	v, _, err := kvstore.GetJSON[[]T](ctx, kv, key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = []T{}
	}
	return v, nil
}

func appendEntry[T any](ctx context.Context, kv kvstore.Store, key string, entry T) error {
	entries, err := list[T](ctx, kv, key)
	if err != nil {
		return err
	}
	return kvstore.SetJSON(ctx, kv, key, append(entries, entry))
}

func deleteEntry[T any](ctx context.Context, kv kvstore.Store, key, id string, idOf func(T) string) error {
	entries, err := list[T](ctx, kv, key)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(entries, func(e T) bool { return idOf(e) == id })
	if i < 0 {
		return fmt.Errorf("%s entry %q: %w", key, id, ErrNotFound)
	}
	return kvstore.SetJSON(ctx, kv, key, slices.Delete(entries, i, i+1))
}

func findEntry[T any](ctx context.Context, kv kvstore.Store, key, id string, idOf func(T) string) (T, error) {
	var zero T
	entries, err := list[T](ctx, kv, key)
	if err != nil {
		return zero, err
	}
	i := slices.IndexFunc(entries, func(e T) bool { return idOf(e) == id })
	if i < 0 {
		return zero, fmt.Errorf("%s entry %q: %w", key, id, ErrNotFound)
	}
	return entries[i], nil
}

func workoutEntryID(w models.Workout) string    { return w.ID }
func weekEntryID(wk models.WeekTemplate) string { return wk.ID }
func programEntryID(p models.Program) string    { return p.ID }

// Workouts lists the workout library.
func (l *Library) Workouts(ctx context.Context) ([]models.Workout, error) {
	return list[models.Workout](ctx, l.kv, kvstore.KeyWorkoutLibrary)
}

// Weeks lists the week library.
func (l *Library) Weeks(ctx context.Context) ([]models.WeekTemplate, error) {
	return list[models.WeekTemplate](ctx, l.kv, kvstore.KeyWeekLibrary)
}

// Programs lists the program library.
func (l *Library) Programs(ctx context.Context) ([]models.Program, error) {
	return list[models.Program](ctx, l.kv, kvstore.KeyProgramLibrary)
}

// SaveWorkout stores a copy of w under a fresh id and the given name. Only the
// workout itself gets a new id; exercises and sets keep theirs. The week
// back-reference is cleared.
func (l *Library) SaveWorkout(ctx context.Context, w models.Workout, name string) (models.Workout, error) {
	entry := w.Clone()
	entry.ID = l.newID()
	entry.Name = name
	entry.WeekID = ""
	if err := appendEntry(ctx, l.kv, kvstore.KeyWorkoutLibrary, entry); err != nil {
		return models.Workout{}, fmt.Errorf("saving workout: %w", err)
	}
	l.log.Info("workout saved to library", "id", entry.ID, "source_id", w.ID, "name", name)
	return entry, nil
}

// SaveWeek stores a week of p and the workouts it references, with fresh ids
// for the week and every workout, exercise and set.
func (l *Library) SaveWeek(ctx context.Context, p models.Program, weekID, name string) (models.WeekTemplate, error) {
	wk, ok := p.FindWeek(weekID)
	if !ok {
		l.log.Warn("save week: week not found", "week_id", weekID)
		return models.WeekTemplate{}, fmt.Errorf("week %q: %w", weekID, ErrNotFound)
	}
	entry, missing, ok := cloneWeek(l.newID, wk, p.FindWorkout)
	if !ok {
		l.log.Warn("save week: workout not in pool", "week_id", weekID, "workout_id", missing)
		return models.WeekTemplate{}, fmt.Errorf("workout %q: %w", missing, ErrNotFound)
	}
	entry.Name = name
	if err := appendEntry(ctx, l.kv, kvstore.KeyWeekLibrary, entry); err != nil {
		return models.WeekTemplate{}, fmt.Errorf("saving week: %w", err)
	}
	l.log.Info("week saved to library", "id", entry.ID, "source_id", weekID, "workouts", len(entry.Workouts))
	return entry, nil
}

// SaveProgram stores a copy of p under a fresh id and the given name. Weeks
// and workouts keep their ids; InstantiateProgram re-mints them on the way out.
func (l *Library) SaveProgram(ctx context.Context, p models.Program, name string) (models.Program, error) {
	entry := p.Clone()
	entry.ID = l.newID()
	entry.Name = name
	if err := appendEntry(ctx, l.kv, kvstore.KeyProgramLibrary, entry); err != nil {
		return models.Program{}, fmt.Errorf("saving program: %w", err)
	}
	l.log.Info("program saved to library", "id", entry.ID, "source_id", p.ID, "name", name)
	return entry, nil
}

// LoadWorkout clones w into weekID of t with fresh ids. A day of 0 keeps the
// source's day. Returns the new workout id.
func (l *Library) LoadWorkout(t Target, w models.Workout, weekID string, day int) (string, error) {
	if _, ok := t.Week(weekID); !ok {
		l.log.Warn("load workout: week not found", "week_id", weekID)
		return "", fmt.Errorf("week %q: %w", weekID, ErrNotFound)
	}
	c := cloneWorkout(l.newID, w, weekID)
	if day > 0 {
		c.Day = day
	}
	if !t.InsertWorkout(c, weekID) {
		return "", fmt.Errorf("inserting workout %q into week %q", c.ID, weekID)
	}
	l.log.Info("workout loaded from library", "id", c.ID, "source_id", w.ID, "week_id", weekID, "day", c.Day)
	return c.ID, nil
}

// LoadWorkoutByID resolves a workout-library entry and loads it like LoadWorkout.
func (l *Library) LoadWorkoutByID(ctx context.Context, t Target, id, weekID string, day int) (string, error) {
	w, err := findEntry(ctx, l.kv, kvstore.KeyWorkoutLibrary, id, workoutEntryID)
	if err != nil {
		l.log.Warn("load workout: library entry unavailable", "id", id, "error", err)
		return "", err
	}
	return l.LoadWorkout(t, w, weekID, day)
}

// LoadWeek appends a clone of tmpl to t as its last week. Workouts the
// template references are taken from the template itself, or from the workout
// library when the template does not carry them. Nothing is inserted unless
// every reference resolves.
func (l *Library) LoadWeek(ctx context.Context, t Target, tmpl models.WeekTemplate) (string, error) {
	var saved []models.Workout
	lookup := func(id string) (models.Workout, bool) {
		if i := slices.IndexFunc(tmpl.Workouts, func(w models.Workout) bool { return w.ID == id }); i >= 0 {
			return tmpl.Workouts[i], true
		}
		if saved == nil {
			var err error
			if saved, err = l.Workouts(ctx); err != nil {
				l.log.Warn("load week: reading workout library", "error", err)
				saved = []models.Workout{}
			}
		}
		if i := slices.IndexFunc(saved, func(w models.Workout) bool { return w.ID == id }); i >= 0 {
			return saved[i], true
		}
		return models.Workout{}, false
	}

	c, missing, ok := cloneWeek(l.newID, tmpl.Week, lookup)
	if !ok {
		l.log.Warn("load week: workout not found", "week_id", tmpl.ID, "workout_id", missing)
		return "", fmt.Errorf("workout %q: %w", missing, ErrNotFound)
	}
	c.Order = t.WeekCount()
	if !t.InsertWeek(c.Week, c.Workouts) {
		return "", fmt.Errorf("inserting week %q", c.ID)
	}
	l.log.Info("week loaded from library", "id", c.ID, "source_id", tmpl.ID, "workouts", len(c.Workouts))
	return c.ID, nil
}

// LoadWeekByID resolves a week-library entry and loads it like LoadWeek.
func (l *Library) LoadWeekByID(ctx context.Context, t Target, id string) (string, error) {
	tmpl, err := findEntry(ctx, l.kv, kvstore.KeyWeekLibrary, id, weekEntryID)
	if err != nil {
		l.log.Warn("load week: library entry unavailable", "id", id, "error", err)
		return "", err
	}
	return l.LoadWeek(ctx, t, tmpl)
}

// InstantiateProgram returns a fresh-id copy of a program-library entry, ready
// to become the active program.
func (l *Library) InstantiateProgram(ctx context.Context, id string) (models.Program, error) {
	p, err := findEntry(ctx, l.kv, kvstore.KeyProgramLibrary, id, programEntryID)
	if err != nil {
		l.log.Warn("instantiate program: library entry unavailable", "id", id, "error", err)
		return models.Program{}, err
	}
	return cloneProgram(l.newID, p), nil
}

// DeleteWorkout removes a workout-library entry.
func (l *Library) DeleteWorkout(ctx context.Context, id string) error {
	return deleteEntry(ctx, l.kv, kvstore.KeyWorkoutLibrary, id, workoutEntryID)
}

// DeleteWeek removes a week-library entry.
func (l *Library) DeleteWeek(ctx context.Context, id string) error {
	return deleteEntry(ctx, l.kv, kvstore.KeyWeekLibrary, id, weekEntryID)
}

// DeleteProgram removes a program-library entry.
func (l *Library) DeleteProgram(ctx context.Context, id string) error {
	return deleteEntry(ctx, l.kv, kvstore.KeyProgramLibrary, id, programEntryID)
}
