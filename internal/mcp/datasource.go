package mcp

import (
	"context"

	"github.com/repforge/repforge/internal/models"
	"github.com/repforge/repforge/internal/units"
	"github.com/repforge/repforge/internal/workspace"
)

// DataSource abstracts the workspace for MCP tools. Local (in-process) and
// HTTPClient (remote via REST API) both satisfy this interface.
type DataSource interface {
	Program(ctx context.Context) (models.Program, error)
	WorkoutTemplates(ctx context.Context) ([]models.Workout, error)
	WeekTemplates(ctx context.Context) ([]models.WeekTemplate, error)
	ProgramTemplates(ctx context.Context) ([]models.Program, error)
	LoadWorkout(ctx context.Context, libraryID, weekID string, day int) (string, error)
	MaxWeights(ctx context.Context) ([]models.MaxWeightRecord, error)
	SetMaxWeight(ctx context.Context, exerciseName, weight string, unit units.Unit) (models.MaxWeightRecord, error)
	WeightToPercentage(ctx context.Context, weight, exerciseName string) (string, error)
	PercentageToWeight(ctx context.Context, percentage, exerciseName string, unit units.Unit) (string, error)
}

// Local serves a workspace opened in the same process.
type Local struct {
	ws *workspace.Workspace
}

// Compile-time checks.
var (
	_ DataSource = (*Local)(nil)
	_ DataSource = (*HTTPClient)(nil)
)

// NewLocal wraps ws as a DataSource.
func NewLocal(ws *workspace.Workspace) *Local {
	return &Local{ws: ws}
}

func (l *Local) Program(context.Context) (models.Program, error) {
	return l.ws.Program(), nil
}

func (l *Local) WorkoutTemplates(ctx context.Context) ([]models.Workout, error) {
	return l.ws.Workouts(ctx)
}

func (l *Local) WeekTemplates(ctx context.Context) ([]models.WeekTemplate, error) {
	return l.ws.Weeks(ctx)
}

func (l *Local) ProgramTemplates(ctx context.Context) ([]models.Program, error) {
	return l.ws.Programs(ctx)
}

func (l *Local) LoadWorkout(ctx context.Context, libraryID, weekID string, day int) (string, error) {
	return l.ws.LoadWorkout(ctx, libraryID, weekID, day)
}

func (l *Local) MaxWeights(context.Context) ([]models.MaxWeightRecord, error) {
	return l.ws.MaxWeights(), nil
}

func (l *Local) SetMaxWeight(ctx context.Context, exerciseName, weight string, unit units.Unit) (models.MaxWeightRecord, error) {
	return l.ws.SetMaxWeight(ctx, exerciseName, weight, unit)
}

func (l *Local) WeightToPercentage(_ context.Context, weight, exerciseName string) (string, error) {
	return l.ws.WeightToPercentage(weight, exerciseName), nil
}

func (l *Local) PercentageToWeight(_ context.Context, percentage, exerciseName string, unit units.Unit) (string, error) {
	return l.ws.PercentageToWeight(percentage, exerciseName, unit), nil
}
