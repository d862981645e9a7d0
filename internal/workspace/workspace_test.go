package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/kvstore"
	"github.com/repforge/repforge/internal/library"
	"github.com/repforge/repforge/internal/models"
	"github.com/repforge/repforge/internal/program"
	"github.com/repforge/repforge/internal/units"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func open(t *testing.T, kv kvstore.Store) *Workspace {
	t.Helper()
	w, err := Open(context.Background(), kv, nil, ids.UUID, testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return w
}

// TestOpenStartsFromSample verifies a fresh store gets the sample program and
// that it is persisted immediately.
func TestOpenStartsFromSample(t *testing.T) {
	kv := kvstore.NewMemory()
	w := open(t, kv)

	p := w.Program()
	if p.Name != "Sample Program" {
		t.Errorf("name = %q", p.Name)
	}
	stored, found, err := kvstore.GetJSON[models.Program](context.Background(), kv, kvstore.KeyActiveProgram)
	if err != nil || !found {
		t.Fatalf("active program not persisted: found=%v err=%v", found, err)
	}
	if stored.ID != p.ID {
		t.Errorf("stored id = %q, want %q", stored.ID, p.ID)
	}
}

// TestEditsPersistAcrossReopen verifies every mutation is written through and
// that reopening restores the same document over SQLite.
func TestEditsPersistAcrossReopen(t *testing.T) {
	kv, err := kvstore.OpenSQLite(filepath.Join(t.TempDir(), "repforge.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer kv.Close()

	w := open(t, kv)
	var weekID string
	if err := w.Edit(func(s *program.Store) error {
		weekID = s.AddWeek()
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	want := w.Program()

	reopened := open(t, kv)
	got := reopened.Program()
	if got.ID != want.ID || len(got.Weeks) != len(want.Weeks) || len(got.Workouts) != len(want.Workouts) {
		t.Fatalf("reopened program differs: got %d weeks, want %d", len(got.Weeks), len(want.Weeks))
	}
	if _, ok := got.FindWeek(weekID); !ok {
		t.Error("added week missing after reopen")
	}
}

// TestOpenRejectsCorruptProgram verifies a stored document with dangling
// references is reported rather than silently replaced.
func TestOpenRejectsCorruptProgram(t *testing.T) {
	kv := kvstore.NewMemory()
	bad := models.Program{
		ID:    "p",
		Weeks: []models.Week{{ID: "w", WorkoutIDs: []string{"ghost"}}},
	}
	if err := kvstore.SetJSON(context.Background(), kv, kvstore.KeyActiveProgram, bad); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(context.Background(), kv, nil, ids.UUID, testLogger()); err == nil {
		t.Fatal("expected error for corrupt program")
	}
}

// TestLibraryRoundTrip saves a week and the whole program, starts over, and
// loads both back.
func TestLibraryRoundTrip(t *testing.T) {
	ctx := context.Background()
	w := open(t, kvstore.NewMemory())
	sample := w.Program()

	tmpl, err := w.SaveWeek(ctx, sample.Weeks[0].ID, "Sample Week")
	if err != nil {
		t.Fatalf("SaveWeek: %v", err)
	}
	saved, err := w.SaveProgram(ctx, "Sample Block")
	if err != nil {
		t.Fatalf("SaveProgram: %v", err)
	}
	if _, err := w.SaveWorkout(ctx, "missing", "x"); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("SaveWorkout missing err = %v", err)
	}

	empty := w.NewProgram("Fresh")
	if len(empty.Weeks) != 0 {
		t.Fatalf("new program has %d weeks", len(empty.Weeks))
	}
	if _, err := w.LoadWeek(ctx, tmpl.ID); err != nil {
		t.Fatalf("LoadWeek: %v", err)
	}
	if p := w.Program(); len(p.Weeks) != 1 || len(p.Workouts) != 2 {
		t.Errorf("after load: weeks=%d workouts=%d", len(p.Weeks), len(p.Workouts))
	}

	inst, err := w.InstantiateProgram(ctx, saved.ID)
	if err != nil {
		t.Fatalf("InstantiateProgram: %v", err)
	}
	if inst.ID == saved.ID || inst.ID == sample.ID || w.Program().ID != inst.ID {
		t.Errorf("instantiated id %q not fresh or not active", inst.ID)
	}
}

// TestMaxWeights verifies the registry is reachable and persisted through the
// workspace.
func TestMaxWeights(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	w := open(t, kv)

	if _, err := w.SetMaxWeight(ctx, "Bench Press", "200", units.Pounds); err != nil {
		t.Fatal(err)
	}
	if got := w.WeightToPercentage("150", "bench press"); got != "75%" {
		t.Errorf("WeightToPercentage = %q", got)
	}
	if got := w.PercentageToWeight("75%", "Bench Press", units.Pounds); got != "150 lbs" {
		t.Errorf("PercentageToWeight = %q", got)
	}

	reopened := open(t, kv)
	if _, ok := reopened.MaxWeight("BENCH PRESS"); !ok {
		t.Error("record not persisted")
	}
	if err := reopened.RemoveMaxWeight(ctx, "bench press"); err != nil {
		t.Fatal(err)
	}
	if len(reopened.MaxWeights()) != 0 {
		t.Error("record not removed")
	}
}

// failingStore is a memory store whose writes can be switched off.
type failingStore struct {
	*kvstore.Memory
	fail bool
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

// TestEditReportsPersistFailure verifies a failed write of the active program
// comes back from Edit while the change stays in memory, and that the next
// successful write clears it.
func TestEditReportsPersistFailure(t *testing.T) {
	kv := &failingStore{Memory: kvstore.NewMemory()}
	w := open(t, kv)
	before := len(w.Program().Weeks)

	kv.fail = true
	err := w.Edit(func(s *program.Store) error {
		s.AddWeek()
		return nil
	})
	if err == nil {
		t.Fatal("expected the write failure to be reported")
	}
	if got := len(w.Program().Weeks); got != before+1 {
		t.Errorf("weeks = %d, want %d", got, before+1)
	}

	kv.fail = false
	if err := w.Edit(func(s *program.Store) error {
		s.Rename("Recovered")
		return nil
	}); err != nil {
		t.Errorf("Edit after recovery: %v", err)
	}

	sentinel := errors.New("rejected")
	if err := w.Edit(func(*program.Store) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("Edit = %v, want the callback's error", err)
	}
}

// TestTemplatesLeaveActiveProgramAlone verifies an import handle writes the
// library and registry without creating an active program.
func TestTemplatesLeaveActiveProgramAlone(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	tmpl, err := OpenTemplates(ctx, kv, ids.Sequence("imp"), testLogger())
	if err != nil {
		t.Fatalf("OpenTemplates: %v", err)
	}

	wo := models.Workout{ID: "src", Name: "Push", Day: 1, Exercises: []models.Exercise{}}
	if _, err := tmpl.SaveTemplate(ctx, wo, "Push (2026-03-05)"); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}
	raised, err := tmpl.RaiseMaxWeight(ctx, "Bench Press", "100", units.Kilos)
	if err != nil || !raised {
		t.Fatalf("RaiseMaxWeight = %v, %v", raised, err)
	}

	if _, found, _ := kvstore.GetJSON[models.Program](ctx, kv, kvstore.KeyActiveProgram); found {
		t.Error("import wrote an active program")
	}

	w := open(t, kv)
	saved, err := w.Workouts(ctx)
	if err != nil || len(saved) != 1 || saved[0].Name != "Push (2026-03-05)" {
		t.Errorf("library = %+v, %v", saved, err)
	}
	if rec, ok := w.MaxWeight("bench press"); !ok || rec.MaxWeight != "100" {
		t.Errorf("max = %+v, %v", rec, ok)
	}
}
