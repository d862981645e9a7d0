package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/repforge/repforge/internal/catalog"
	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/ingest/alpha"
	"github.com/repforge/repforge/internal/kvstore"
	"github.com/repforge/repforge/internal/metrics"
	"github.com/repforge/repforge/internal/workspace"
)

func newInstrumentedServer(t *testing.T) (*Server, *metrics.Manager) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws, err := workspace.Open(context.Background(), kvstore.NewMemory(), catalog.Default(), ids.Sequence("t"), log)
	if err != nil {
		t.Fatalf("workspace.Open: %v", err)
	}
	m, reg := metrics.NewTestManager()
	s := New(ws, alpha.NewProvider(ws, ids.Sequence("imp"), log), testKey, log, WithMetrics(m, reg))
	return s, m
}

// TestInstrumentCountsRequests verifies requests are counted by status and
// timed per route.
func TestInstrumentCountsRequests(t *testing.T) {
	s, m := newInstrumentedServer(t)

	expectStatus(t, call(t, s, http.MethodGet, "/api/v1/program", ""), http.StatusOK)
	expectStatus(t, call(t, s, http.MethodGet, "/api/v1/program", ""), http.StatusOK)
	expectStatus(t, call(t, s, http.MethodGet, "/api/v1/maxweights/nobody", ""), http.StatusNotFound)

	if got := testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "200")); got != 2 {
		t.Errorf("GET 200 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "404")); got != 1 {
		t.Errorf("GET 404 = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.HistogramRequestDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
	if got := testutil.ToFloat64(m.GaugeRequests); got != 0 {
		t.Errorf("in-flight = %v, want 0", got)
	}
}

// TestMetricsEndpoint verifies the registry is exposed in text format.
func TestMetricsEndpoint(t *testing.T) {
	s, _ := newInstrumentedServer(t)
	call(t, s, http.MethodGet, "/api/v1/catalog", "")

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "repforge_test_requests_total") {
		t.Errorf("metrics body missing request counter:\n%s", rec.Body.String())
	}
}

// TestImportMetrics verifies imports count saved sessions and raised maxes.
func TestImportMetrics(t *testing.T) {
	s, m := newInstrumentedServer(t)
	csv := `"Push · Day 1";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
`
	expectStatus(t, call(t, s, http.MethodPost, "/api/v1/ingest/alpha?dry_run=true", csv), http.StatusOK)
	if got := testutil.ToFloat64(m.CounterImportedSessions); got != 0 {
		t.Errorf("dry run counted %v sessions", got)
	}

	expectStatus(t, call(t, s, http.MethodPost, "/api/v1/ingest/alpha", csv), http.StatusOK)
	if got := testutil.ToFloat64(m.CounterImportedSessions); got != 1 {
		t.Errorf("imported sessions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CounterMaxesRaised); got != 1 {
		t.Errorf("maxes raised = %v, want 1", got)
	}
}
