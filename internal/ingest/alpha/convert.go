package alpha

import (
	"strconv"
	"strings"
	"time"

	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/models"
	"github.com/repforge/repforge/internal/units"
)

// ToWorkout turns a session into a workout template: one exercise per
// movement and one set per working set. Warmups are dropped. The day is the
// session's weekday, Monday being 1.
func ToWorkout(s Session, newID ids.Generator) models.Workout {
	w := models.Workout{
		ID:        newID(),
		Name:      s.Name,
		Day:       weekday(s.Date),
		Exercises: make([]models.Exercise, 0, len(s.Exercises)),
	}
	for _, ex := range s.Exercises {
		out := models.Exercise{
			ID:    newID(),
			Name:  ex.Name,
			Notes: exerciseNotes(ex),
			Sets:  []models.Set{},
		}
		for _, set := range ex.Sets {
			if set.IsWarmup {
				continue
			}
			out.Sets = append(out.Sets, models.Set{
				ID:        newID(),
				Reps:      strconv.Itoa(set.Reps),
				Weight:    formatWeight(set),
				Intensity: "RIR " + formatNumber(set.RIR),
			})
		}
		w.Exercises = append(w.Exercises, out)
	}
	return w
}

func weekday(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

func exerciseNotes(ex Exercise) string {
	var parts []string
	if ex.Equipment != "" {
		parts = append(parts, ex.Equipment)
	}
	if ex.TargetReps > 0 {
		parts = append(parts, "target "+strconv.Itoa(ex.TargetReps)+" reps")
	}
	return strings.Join(parts, " · ")
}

func formatWeight(set Set) string {
	w := formatNumber(set.WeightKg) + " " + units.Kilos.Suffix()
	if set.IsBodyweightPlus {
		return "BW + " + w
	}
	return w
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// HeaviestSets returns the heaviest loaded working set per exercise name, in
// kilograms. Bodyweight-plus sets are not comparable to barbell loads and are
// left out.
func HeaviestSets(sessions []Session) map[string]float64 {
	out := map[string]float64{}
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			for _, set := range ex.Sets {
				if set.IsWarmup || set.IsBodyweightPlus || set.WeightKg <= 0 {
					continue
				}
				if set.WeightKg > out[ex.Name] {
					out[ex.Name] = set.WeightKg
				}
			}
		}
	}
	return out
}
