// Package maxweight keeps per-exercise personal bests and translates between
// percentages of a max and absolute weights.
package maxweight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/repforge/repforge/internal/kvstore"
	"github.com/repforge/repforge/internal/models"
	"github.com/repforge/repforge/internal/units"
)

// ErrNameRequired is returned when setting a record without an exercise name.
var ErrNameRequired = errors.New("exercise name is required")

// Registry holds max-weight records keyed by lower-cased exercise name. Every
// change rewrites the whole collection under kvstore.KeyMaxWeights.
type Registry struct {
	kv      kvstore.Store
	log     *slog.Logger
	now     func() time.Time
	records map[string]models.MaxWeightRecord
}

// Load reads the persisted registry. A missing key yields an empty registry.
func Load(ctx context.Context, kv kvstore.Store, log *slog.Logger) (*Registry, error) {
	records, _, err := kvstore.GetJSON[map[string]models.MaxWeightRecord](ctx, kv, kvstore.KeyMaxWeights)
	if err != nil {
		return nil, fmt.Errorf("loading max weights: %w", err)
	}
	if records == nil {
		records = map[string]models.MaxWeightRecord{}
	}
	return &Registry{kv: kv, log: log, now: time.Now, records: records}, nil
}

// SetClock overrides the time source used to date new records.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get returns the record for exerciseName, matched case-insensitively.
func (r *Registry) Get(exerciseName string) (models.MaxWeightRecord, bool) {
	rec, ok := r.records[key(exerciseName)]
	return rec, ok
}

// All returns every record sorted by exercise name.
func (r *Registry) All() []models.MaxWeightRecord {
	out := make([]models.MaxWeightRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return key(out[i].ExerciseName) < key(out[j].ExerciseName)
	})
	return out
}

// Set creates or overwrites the record for exerciseName.
func (r *Registry) Set(ctx context.Context, exerciseName, weight string, unit units.Unit) (models.MaxWeightRecord, error) {
	k := key(exerciseName)
	if k == "" {
		return models.MaxWeightRecord{}, ErrNameRequired
	}
	rec := models.MaxWeightRecord{
		ExerciseName: strings.TrimSpace(exerciseName),
		MaxWeight:    weight,
		WeightType:   string(unit),
		Date:         r.now().UTC(),
	}
	prev, had := r.records[k]
	r.records[k] = rec
	if err := r.persist(ctx); err != nil {
		if had {
			r.records[k] = prev
		} else {
			delete(r.records, k)
		}
		return models.MaxWeightRecord{}, err
	}
	r.log.Info("max weight set", "exercise", rec.ExerciseName, "weight", weight, "unit", unit)
	return rec, nil
}

// Raise sets the record only when weight beats the current max once both are
// expressed in the same unit. A record in another unit family is never
// replaced. It reports whether the record changed.
func (r *Registry) Raise(ctx context.Context, exerciseName, weight string, unit units.Unit) (bool, error) {
	if cur, ok := r.Get(exerciseName); ok {
		from := units.Unit(cur.WeightType)
		if from.IsWeight() != unit.IsWeight() {
			r.log.Warn("max weight not raised: unit family differs",
				"exercise", cur.ExerciseName, "recorded_unit", cur.WeightType, "unit", unit)
			return false, nil
		}
		curVal := units.ConvertWeight(units.ExtractNumericWeight(cur.MaxWeight), from, unit)
		if units.ExtractNumericWeight(weight) <= curVal {
			return false, nil
		}
	}
	if _, err := r.Set(ctx, exerciseName, weight, unit); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the record for exerciseName. Removing an unknown name is a no-op.
func (r *Registry) Remove(ctx context.Context, exerciseName string) error {
	k := key(exerciseName)
	prev, ok := r.records[k]
	if !ok {
		return nil
	}
	delete(r.records, k)
	if err := r.persist(ctx); err != nil {
		r.records[k] = prev
		return err
	}
	return nil
}

func (r *Registry) persist(ctx context.Context) error {
	if err := kvstore.SetJSON(ctx, r.kv, kvstore.KeyMaxWeights, r.records); err != nil {
		return fmt.Errorf("saving max weights: %w", err)
	}
	return nil
}

// WeightToPercentage expresses weight as a whole percentage of the recorded
// max, e.g. "75%". The weight is read in the record's own unit. Without a
// usable record it returns "".
func (r *Registry) WeightToPercentage(weight, exerciseName string) string {
	rec, ok := r.Get(exerciseName)
	if !ok {
		return ""
	}
	best := units.ExtractNumericWeight(rec.MaxWeight)
	if best <= 0 {
		return ""
	}
	pct := math.Round(units.ExtractNumericWeight(weight) / best * 100)
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// PercentageToWeight computes percentage of the recorded max in the target
// unit, rounded to realistic increments: 2.5 for pounds, hundredths for miles,
// whole units otherwise. It returns "" without a record, for a non-positive
// percentage, or when the record's unit cannot convert to target.
func (r *Registry) PercentageToWeight(percentage, exerciseName string, target units.Unit) string {
	rec, ok := r.Get(exerciseName)
	if !ok {
		return ""
	}
	pct := units.ExtractNumericWeight(percentage)
	if pct <= 0 {
		return ""
	}
	best := units.ConvertWeight(units.ExtractNumericWeight(rec.MaxWeight), units.Unit(rec.WeightType), target)
	if best <= 0 {
		return ""
	}

	raw := best * pct / 100
	var v float64
	switch target {
	case units.Pounds:
		v = units.RoundToIncrement(raw, 2.5)
	case units.DistanceMi:
		v = math.Round(raw*100) / 100
	default:
		v = math.Round(raw)
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + target.Suffix()
}
