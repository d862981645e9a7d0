package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/ingest/alpha"
	"github.com/repforge/repforge/internal/server"
	"github.com/repforge/repforge/internal/units"
)

// newAPIServer runs the real REST router over a fresh workspace so the
// client's paths and payloads are checked against the actual routes.
func newAPIServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	ws := newTestWorkspace(t)
	srv := server.New(ws, alpha.NewProvider(ws, ids.Sequence("imp"), discardLogger()), apiKey, discardLogger())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

// TestHTTPClientRoundTrip verifies the remote data source reads and edits
// through the REST API.
func TestHTTPClientRoundTrip(t *testing.T) {
	ts := newAPIServer(t, "k")
	client := NewHTTPClient(ts.URL+"/", "k")
	ctx := context.Background()

	p, err := client.Program(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Weeks) == 0 {
		t.Fatal("expected the sample program")
	}

	rec, err := client.SetMaxWeight(ctx, "Bench Press", "100", units.Kilos)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ExerciseName != "Bench Press" || rec.WeightType != "kilos" {
		t.Errorf("record = %+v", rec)
	}

	pct, err := client.WeightToPercentage(ctx, "90", "bench press")
	if err != nil || pct != "90%" {
		t.Errorf("percentage = %q, %v", pct, err)
	}
	weight, err := client.PercentageToWeight(ctx, "50", "Bench Press", units.Kilos)
	if err != nil || weight != "50 kg" {
		t.Errorf("weight = %q, %v", weight, err)
	}

	maxes, err := client.MaxWeights(ctx)
	if err != nil || len(maxes) != 1 {
		t.Errorf("max weights = %+v, %v", maxes, err)
	}
	for _, list := range []func(context.Context) error{
		func(ctx context.Context) error { _, err := client.WorkoutTemplates(ctx); return err },
		func(ctx context.Context) error { _, err := client.WeekTemplates(ctx); return err },
		func(ctx context.Context) error { _, err := client.ProgramTemplates(ctx); return err },
	} {
		if err := list(ctx); err != nil {
			t.Errorf("listing library: %v", err)
		}
	}
}

// TestHTTPClientErrors verifies non-2xx responses become errors.
func TestHTTPClientErrors(t *testing.T) {
	ts := newAPIServer(t, "k")

	if _, err := NewHTTPClient(ts.URL, "wrong").SetMaxWeight(context.Background(), "Squat", "100", units.Kilos); err == nil {
		t.Error("expected error for a rejected API key")
	}
	if _, err := NewHTTPClient(ts.URL, "k").LoadWorkout(context.Background(), "nope", "nope", 0); err == nil {
		t.Error("expected error for an unknown template")
	}

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	if _, err := NewHTTPClient(down.URL, "").Program(context.Background()); err == nil {
		t.Error("expected error for an unreachable server")
	}
}
