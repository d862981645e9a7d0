package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/ingest"
	"github.com/repforge/repforge/internal/models"
	"github.com/repforge/repforge/internal/units"
)

// Sink receives imported templates and max-weight candidates.
type Sink interface {
	SaveTemplate(ctx context.Context, w models.Workout, name string) (models.Workout, error)
	RaiseMaxWeight(ctx context.Context, exerciseName, weight string, unit units.Unit) (bool, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	sink  Sink
	newID ids.Generator
	log   *slog.Logger
}

// NewProvider creates a new Alpha Progression import provider.
func NewProvider(sink Sink, newID ids.Generator, log *slog.Logger) *Provider {
	return &Provider{sink: sink, newID: newID, log: log}
}

// Ingest parses a CSV export, saves every session as a workout template and
// raises max weights that the export beats. With dryRun set nothing is saved.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, dryRun bool) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions), DryRun: dryRun}
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			for _, set := range ex.Sets {
				if set.IsWarmup {
					result.WarmupsSkipped++
				} else {
					result.SetsImported++
				}
			}
		}
	}
	if dryRun {
		return result, nil
	}

	for _, s := range sessions {
		w := ToWorkout(s, p.newID)
		name := s.Name
		if !s.Date.IsZero() {
			name = fmt.Sprintf("%s (%s)", s.Name, s.Date.Format("2006-01-02"))
		}
		if _, err := p.sink.SaveTemplate(ctx, w, name); err != nil {
			return nil, fmt.Errorf("saving session %q: %w", s.Name, err)
		}
		result.WorkoutsSaved++
	}

	heaviest := HeaviestSets(sessions)
	names := make([]string, 0, len(heaviest))
	for name := range heaviest {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		raised, err := p.sink.RaiseMaxWeight(ctx, name, formatNumber(heaviest[name]), units.Kilos)
		if err != nil {
			return nil, fmt.Errorf("raising max for %q: %w", name, err)
		}
		if raised {
			result.MaxesRaised = append(result.MaxesRaised, name)
		}
	}

	p.log.Info("alpha import complete",
		"sessions", result.SessionsReceived,
		"workouts_saved", result.WorkoutsSaved,
		"sets", result.SetsImported,
		"maxes_raised", len(result.MaxesRaised),
	)
	return result, nil
}
