package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/repforge/repforge/internal/catalog"
	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/ingest"
	"github.com/repforge/repforge/internal/ingest/alpha"
	"github.com/repforge/repforge/internal/kvstore"
	"github.com/repforge/repforge/internal/models"
	"github.com/repforge/repforge/internal/workspace"
)

const testKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws, err := workspace.Open(context.Background(), kvstore.NewMemory(), catalog.Default(), ids.Sequence("t"), log)
	if err != nil {
		t.Fatalf("workspace.Open: %v", err)
	}
	return New(ws, alpha.NewProvider(ws, ids.Sequence("imp"), log), testKey, log)
}

// call sends a request with the API key and returns the recorded response.
func call(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("X-API-Key", testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

// newProgramWithWeek resets the server to an empty program with one week and
// returns the week and its default workout.
func newProgramWithWeek(t *testing.T, s *Server) (weekID, workoutID string) {
	t.Helper()
	expectStatus(t, call(t, s, http.MethodPost, "/api/v1/program", `{"name":"Block"}`), http.StatusCreated)
	rec := call(t, s, http.MethodPost, "/api/v1/program/weeks", "")
	expectStatus(t, rec, http.StatusCreated)
	weekID = decodeBody[map[string]string](t, rec)["id"]

	rec = call(t, s, http.MethodGet, "/api/v1/program/weeks/"+weekID, "")
	expectStatus(t, rec, http.StatusOK)
	got := decodeBody[struct {
		Week     models.Week      `json:"week"`
		Workouts []models.Workout `json:"workouts"`
	}](t, rec)
	if len(got.Workouts) != 1 {
		t.Fatalf("new week workouts = %d, want 1", len(got.Workouts))
	}
	return weekID, got.Workouts[0].ID
}

// TestEditFlow drives a small edit session end to end through the router.
func TestEditFlow(t *testing.T) {
	s := newTestServer(t)
	_, workoutID := newProgramWithWeek(t, s)
	base := "/api/v1/program/workouts/" + workoutID

	expectStatus(t, call(t, s, http.MethodPost, base+"/exercises", `{"catalogId":"barbell-bench-press"}`), http.StatusCreated)
	expectStatus(t, call(t, s, http.MethodPost, base+"/circuits", `{"kind":"tabata"}`), http.StatusCreated)

	rec := call(t, s, http.MethodPatch, base, `{"name":"Heavy","day":3}`)
	expectStatus(t, rec, http.StatusOK)
	w := decodeBody[models.Workout](t, rec)
	if w.Name != "Heavy" || w.Day != 3 {
		t.Errorf("workout = %q day %d, want Heavy day 3", w.Name, w.Day)
	}
	// The seeded blank exercise comes first.
	if len(w.Exercises) != 4 {
		t.Fatalf("exercises = %d, want blank, bench press, tabata header and member", len(w.Exercises))
	}
	if w.Exercises[0].Name != "" {
		t.Errorf("seeded exercise = %+v, want blank", w.Exercises[0])
	}
	if w.Exercises[1].Name != "Bench Press" || len(w.Exercises[1].Sets) != 1 {
		t.Errorf("bench press = %+v", w.Exercises[1])
	}
	if !w.Exercises[2].IsCircuit || w.Exercises[2].CircuitType != "tabata" {
		t.Errorf("third exercise = %+v, want tabata header", w.Exercises[2])
	}
	if !w.Exercises[3].IsInCircuit || w.Exercises[3].CircuitID != w.Exercises[2].CircuitID {
		t.Errorf("fourth exercise = %+v, want tabata member", w.Exercises[3])
	}

	benchID := w.Exercises[1].ID
	rec = call(t, s, http.MethodPost, base+"/exercises/"+benchID+"/sets", "")
	expectStatus(t, rec, http.StatusCreated)
	setID := decodeBody[map[string]string](t, rec)["id"]

	rec = call(t, s, http.MethodPatch, base+"/exercises/"+benchID+"/sets/"+setID, `{"weight":"225 lbs"}`)
	expectStatus(t, rec, http.StatusOK)
	ex := decodeBody[models.Exercise](t, rec)
	if len(ex.Sets) != 2 || ex.Sets[1].Weight != "225 lbs" {
		t.Errorf("sets = %+v", ex.Sets)
	}

	rec = call(t, s, http.MethodGet, "/api/v1/program", "")
	expectStatus(t, rec, http.StatusOK)
	if p := decodeBody[models.Program](t, rec); p.Name != "Block" || len(p.Weeks) != 1 {
		t.Errorf("program = %q with %d weeks", p.Name, len(p.Weeks))
	}
}

// TestUnknownIDsReturnNotFound verifies unresolved ids surface as 404s rather
// than silent success.
func TestUnknownIDsReturnNotFound(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/v1/program/workouts/nope/exercises", `{}`},
		{http.MethodPatch, "/api/v1/program/weeks/nope", `{"name":"x"}`},
		{http.MethodDelete, "/api/v1/program/weeks/nope", ""},
		{http.MethodGet, "/api/v1/program/workouts/nope", ""},
		{http.MethodPost, "/api/v1/library/workouts", `{"workoutId":"nope","name":"x"}`},
		{http.MethodPost, "/api/v1/library/weeks/nope/load", ""},
		{http.MethodPost, "/api/v1/program/weeks/nope/workouts/load", `{"workout":{"name":"x"}}`},
		{http.MethodDelete, "/api/v1/library/programs/nope", ""},
		{http.MethodGet, "/api/v1/maxweights/Nope", ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			expectStatus(t, call(t, s, tc.method, tc.path, tc.body), http.StatusNotFound)
		})
	}
}

// TestEditsRequireAPIKey verifies reads are open and edits are key-gated.
func TestEditsRequireAPIKey(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/program", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/program/weeks", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusUnauthorized)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/program/weeks", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusForbidden)
}

// TestLibraryEndpoints verifies a saved week can be loaded back as a new week.
func TestLibraryEndpoints(t *testing.T) {
	s := newTestServer(t)
	weekID, _ := newProgramWithWeek(t, s)

	rec := call(t, s, http.MethodPost, "/api/v1/library/weeks", `{"weekId":"`+weekID+`","name":"Base"}`)
	expectStatus(t, rec, http.StatusCreated)
	tmpl := decodeBody[models.WeekTemplate](t, rec)
	if tmpl.Name != "Base" || tmpl.ID == weekID || len(tmpl.Workouts) != 1 {
		t.Errorf("template = %+v", tmpl)
	}

	rec = call(t, s, http.MethodGet, "/api/v1/library/weeks", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[[]models.WeekTemplate](t, rec); len(got) != 1 {
		t.Fatalf("week library = %d entries, want 1", len(got))
	}

	expectStatus(t, call(t, s, http.MethodPost, "/api/v1/library/weeks/"+tmpl.ID+"/load", ""), http.StatusCreated)
	rec = call(t, s, http.MethodGet, "/api/v1/program", "")
	p := decodeBody[models.Program](t, rec)
	if len(p.Weeks) != 2 || p.Weeks[1].Order != 1 {
		t.Errorf("weeks = %+v", p.Weeks)
	}

	expectStatus(t, call(t, s, http.MethodDelete, "/api/v1/library/weeks/"+tmpl.ID, ""), http.StatusNoContent)
}

// TestLoadInlineWorkout verifies a workout sent in the body is copied into a
// week with fresh ids and the requested day.
func TestLoadInlineWorkout(t *testing.T) {
	s := newTestServer(t)
	weekID, _ := newProgramWithWeek(t, s)

	body := `{"day":3,"workout":{"id":"src","name":"Imported Pull","day":1,"exercises":[` +
		`{"id":"e1","name":"Barbell Rows","notes":"","sets":[{"id":"s1","reps":"8","weight":"82.5 kg","intensity":"RIR 2","rest":"2m"}]}]}}`
	rec := call(t, s, http.MethodPost, "/api/v1/program/weeks/"+weekID+"/workouts/load", body)
	expectStatus(t, rec, http.StatusCreated)
	id := decodeBody[map[string]string](t, rec)["id"]
	if id == "" || id == "src" {
		t.Fatalf("loaded id = %q, want a fresh one", id)
	}

	rec = call(t, s, http.MethodGet, "/api/v1/program/workouts/"+id, "")
	expectStatus(t, rec, http.StatusOK)
	w := decodeBody[models.Workout](t, rec)
	if w.Name != "Imported Pull" || w.Day != 3 || w.WeekID != weekID {
		t.Errorf("workout = %q day %d week %q", w.Name, w.Day, w.WeekID)
	}
	if len(w.Exercises) != 1 || w.Exercises[0].ID == "e1" || w.Exercises[0].Sets[0].Weight != "82.5 kg" {
		t.Errorf("exercises = %+v", w.Exercises)
	}
}

// TestCalcEndpoints verifies max-weight records feed the percentage helpers.
func TestCalcEndpoints(t *testing.T) {
	s := newTestServer(t)

	expectStatus(t, call(t, s, http.MethodPut, "/api/v1/maxweights/Squat", `{"weight":"200","unit":"pounds"}`), http.StatusOK)
	expectStatus(t, call(t, s, http.MethodPut, "/api/v1/maxweights/Squat", `{"weight":"200","unit":"stone"}`), http.StatusBadRequest)

	rec := call(t, s, http.MethodGet, "/api/v1/calc/percentage?weight=150&exercise=Squat", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[map[string]string](t, rec)["percentage"]; got != "75%" {
		t.Errorf("percentage = %q, want 75%%", got)
	}

	rec = call(t, s, http.MethodGet, "/api/v1/calc/weight?percentage=80&exercise=Squat&unit=pounds", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[map[string]string](t, rec)["weight"]; got != "160 lbs" {
		t.Errorf("weight = %q, want 160 lbs", got)
	}

	rec = call(t, s, http.MethodGet, "/api/v1/calc/convert?value=1609.34&from=distance-m&to=distance-mi", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[map[string]any](t, rec)["value"].(float64); got < 0.999 || got > 1.001 {
		t.Errorf("converted = %v, want 1", got)
	}

	rec = call(t, s, http.MethodGet, "/api/v1/calc/convert?value=10&from=pounds&to=distance-m", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[map[string]any](t, rec); got["value"] != 0.0 || got["unit"] != "distance-m" {
		t.Errorf("cross-family conversion = %v, want 0 distance-m", got)
	}

	rec = call(t, s, http.MethodGet, "/api/v1/calc/percentage?weight=150&exercise=Deadlift", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[map[string]string](t, rec)["percentage"]; got != "" {
		t.Errorf("percentage without a max = %q, want empty", got)
	}
	expectStatus(t, call(t, s, http.MethodDelete, "/api/v1/maxweights/Squat", ""), http.StatusNoContent)
}

// TestAlphaIngestEndpoint verifies an uploaded export lands in the workout
// library and raises max weights.
func TestAlphaIngestEndpoint(t *testing.T) {
	s := newTestServer(t)
	csv := `"Push · Day 1";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;100;6;0
`
	rec := call(t, s, http.MethodPost, "/api/v1/ingest/alpha", csv)
	expectStatus(t, rec, http.StatusOK)
	result := decodeBody[ingest.Result](t, rec)
	if result.SessionsReceived != 1 || result.WorkoutsSaved != 1 || result.SetsImported != 2 {
		t.Errorf("result = %+v", result)
	}

	rec = call(t, s, http.MethodGet, "/api/v1/library/workouts", "")
	if got := decodeBody[[]models.Workout](t, rec); len(got) != 1 || len(got[0].Exercises) != 1 {
		t.Errorf("workout library = %+v", got)
	}
	rec = call(t, s, http.MethodGet, "/api/v1/maxweights/Bench%20Press", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[models.MaxWeightRecord](t, rec); got.MaxWeight != "102.5" || got.WeightType != "kilos" {
		t.Errorf("max = %+v", got)
	}
}
