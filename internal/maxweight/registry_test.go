package maxweight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/repforge/repforge/internal/kvstore"
	"github.com/repforge/repforge/internal/models"
	"github.com/repforge/repforge/internal/units"
)

func newRegistry(t *testing.T, kv kvstore.Store) *Registry {
	t.Helper()
	r, err := Load(context.Background(), kv, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	r.SetClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) })
	return r
}

// TestGetCaseInsensitive verifies records are keyed by lower-cased name.
func TestGetCaseInsensitive(t *testing.T) {
	r := newRegistry(t, kvstore.NewMemory())
	if _, err := r.Set(context.Background(), "Bench Press", "200", units.Pounds); err != nil {
		t.Fatal(err)
	}
	rec, ok := r.Get("bench PRESS")
	if !ok {
		t.Fatal("record not found with different casing")
	}
	if rec.ExerciseName != "Bench Press" || rec.MaxWeight != "200" || rec.WeightType != "pounds" {
		t.Errorf("record = %+v", rec)
	}
	if !rec.Date.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", rec.Date)
	}
}

// TestSetRequiresName verifies blank names are rejected.
func TestSetRequiresName(t *testing.T) {
	r := newRegistry(t, kvstore.NewMemory())
	if _, err := r.Set(context.Background(), "  ", "100", units.Kilos); !errors.Is(err, ErrNameRequired) {
		t.Errorf("err = %v, want ErrNameRequired", err)
	}
}

// TestPersistence verifies set and remove rewrite the stored collection so a
// fresh registry sees the same state.
func TestPersistence(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	r := newRegistry(t, kv)
	_, _ = r.Set(ctx, "Squat", "140", units.Kilos)
	_, _ = r.Set(ctx, "Deadlift", "180", units.Kilos)
	if err := r.Remove(ctx, "SQUAT"); err != nil {
		t.Fatal(err)
	}

	stored, found, err := kvstore.GetJSON[map[string]models.MaxWeightRecord](ctx, kv, kvstore.KeyMaxWeights)
	if err != nil || !found {
		t.Fatalf("stored registry found=%v err=%v", found, err)
	}
	if _, ok := stored["squat"]; ok {
		t.Error("squat still persisted after remove")
	}
	if _, ok := stored["deadlift"]; !ok {
		t.Error("deadlift missing from persisted registry")
	}

	reloaded := newRegistry(t, kv)
	if all := reloaded.All(); len(all) != 1 || all[0].ExerciseName != "Deadlift" {
		t.Errorf("reloaded = %+v", all)
	}
}

// TestRemoveUnknown verifies removing a missing record is a silent no-op.
func TestRemoveUnknown(t *testing.T) {
	r := newRegistry(t, kvstore.NewMemory())
	if err := r.Remove(context.Background(), "nothing"); err != nil {
		t.Errorf("Remove(unknown) = %v", err)
	}
}

// TestPercentageRoundTrip covers the bench press scenario: 150 of a 200 lb max
// is 75%, and 75% maps back to 150 lbs.
func TestPercentageRoundTrip(t *testing.T) {
	r := newRegistry(t, kvstore.NewMemory())
	_, _ = r.Set(context.Background(), "Bench Press", "200 lbs", units.Pounds)

	if got := r.WeightToPercentage("150", "Bench Press"); got != "75%" {
		t.Errorf("WeightToPercentage = %q, want 75%%", got)
	}
	if got := r.PercentageToWeight("75%", "Bench Press", units.Pounds); got != "150 lbs" {
		t.Errorf("PercentageToWeight = %q, want 150 lbs", got)
	}
}

// TestPercentageToWeightRounding verifies plate-increment rounding per unit.
func TestPercentageToWeightRounding(t *testing.T) {
	r := newRegistry(t, kvstore.NewMemory())
	ctx := context.Background()
	_, _ = r.Set(ctx, "Squat", "315", units.Pounds)
	_, _ = r.Set(ctx, "Run", "5", units.DistanceMi)

	tests := []struct {
		pct, name string
		target    units.Unit
		want      string
	}{
		{"72%", "Squat", units.Pounds, "227.5 lbs"}, // 226.8
		{"72%", "Squat", units.Kilos, "103 kg"},     // 102.87
		{"33%", "Run", units.DistanceMi, "1.65 mi"},
		{"10%", "Run", units.DistanceM, "805 m"}, // 804.67
	}
	for _, tt := range tests {
		if got := r.PercentageToWeight(tt.pct, tt.name, tt.target); got != tt.want {
			t.Errorf("PercentageToWeight(%s, %s, %s) = %q, want %q", tt.pct, tt.name, tt.target, got, tt.want)
		}
	}
}

// TestSentinelsWithoutRecord verifies missing records and incompatible units
// yield the empty string instead of an error.
func TestSentinelsWithoutRecord(t *testing.T) {
	r := newRegistry(t, kvstore.NewMemory())
	_, _ = r.Set(context.Background(), "Bench Press", "200", units.Pounds)

	if got := r.WeightToPercentage("150", "Overhead Press"); got != "" {
		t.Errorf("WeightToPercentage(unknown) = %q", got)
	}
	if got := r.PercentageToWeight("75%", "Overhead Press", units.Pounds); got != "" {
		t.Errorf("PercentageToWeight(unknown) = %q", got)
	}
	if got := r.PercentageToWeight("75%", "Bench Press", units.DistanceM); got != "" {
		t.Errorf("PercentageToWeight(incompatible) = %q", got)
	}
	if got := r.PercentageToWeight("abc", "Bench Press", units.Pounds); got != "" {
		t.Errorf("PercentageToWeight(garbage) = %q", got)
	}
}

// TestRaise verifies imports only ever raise a max, comparing across units.
func TestRaise(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t, kvstore.NewMemory())
	_, _ = r.Set(ctx, "Deadlift", "400", units.Pounds) // ~181.4 kg

	changed, err := r.Raise(ctx, "Deadlift", "180", units.Kilos)
	if err != nil || changed {
		t.Errorf("Raise(180kg) changed=%v err=%v, want unchanged", changed, err)
	}
	changed, err = r.Raise(ctx, "Deadlift", "185", units.Kilos)
	if err != nil || !changed {
		t.Errorf("Raise(185kg) changed=%v err=%v, want changed", changed, err)
	}
	if rec, _ := r.Get("deadlift"); rec.WeightType != "kilos" || rec.MaxWeight != "185" {
		t.Errorf("record = %+v", rec)
	}
	changed, _ = r.Raise(ctx, "Front Squat", "100", units.Kilos)
	if !changed {
		t.Error("Raise on a new exercise should create the record")
	}
}

// TestRaiseKeepsOtherUnitFamily verifies a distance record is never replaced
// by a weight, whatever the number.
func TestRaiseKeepsOtherUnitFamily(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t, kvstore.NewMemory())
	if _, err := r.Set(ctx, "Sled Push", "40", units.DistanceM); err != nil {
		t.Fatal(err)
	}

	changed, err := r.Raise(ctx, "Sled Push", "120", units.Kilos)
	if err != nil || changed {
		t.Errorf("Raise(120kg) over a distance record changed=%v err=%v, want unchanged", changed, err)
	}
	if rec, _ := r.Get("sled push"); rec.WeightType != string(units.DistanceM) || rec.MaxWeight != "40" {
		t.Errorf("record = %+v, want the 40 m record kept", rec)
	}

	changed, err = r.Raise(ctx, "Sled Push", "50", units.DistanceYd)
	if err != nil || !changed {
		t.Errorf("Raise(50yd) changed=%v err=%v, want changed", changed, err)
	}
}
