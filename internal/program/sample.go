package program

import (
	"log/slog"

	"github.com/repforge/repforge/internal/ids"
)

func strPtr(s string) *string { return &s }

// NewSample builds a one-week starter program: a strength day seeded from the
// catalog (when one is given) and a conditioning day with an AMRAP.
func NewSample(newID ids.Generator, cat Catalog, log *slog.Logger) *Store {
	s := New("Sample Program", newID, cat, log)

	weekID := s.AddWeek()
	strength := s.WorkoutsInWeek(weekID)[0]
	s.UpdateWorkout(strength.ID, WorkoutUpdate{Name: strPtr("Upper Body")})

	// Replace the blank starter exercise with catalog movements.
	s.DeleteExercise(strength.ID, strength.Exercises[0].ID)
	for _, catalogID := range []string{"barbell-bench-press", "overhead-press", "pull-up"} {
		exID, _ := s.AddExercise(strength.ID, catalogID)
		ex, _ := s.Exercise(strength.ID, exID)
		s.UpdateSet(strength.ID, exID, ex.Sets[0].ID, SetUpdate{
			Reps:      strPtr("8"),
			Intensity: strPtr("RPE 7"),
			Rest:      strPtr("90s"),
		})
		s.AddSet(strength.ID, exID)
		s.AddSet(strength.ID, exID)
	}

	conditioningID, _ := s.AddWorkout(weekID)
	s.UpdateWorkout(conditioningID, WorkoutUpdate{Name: strPtr("Conditioning")})
	conditioning, _ := s.Workout(conditioningID)
	s.DeleteExercise(conditioningID, conditioning.Exercises[0].ID)
	s.AddAMRAP(conditioningID)

	return s
}
