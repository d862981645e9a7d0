// Package ingest holds what every import source reports back.
package ingest

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived int      `json:"sessions_received"`
	WorkoutsSaved    int      `json:"workouts_saved"`
	SetsImported     int      `json:"sets_imported"`
	WarmupsSkipped   int      `json:"warmups_skipped"`
	MaxesRaised      []string `json:"maxes_raised,omitempty"`
	DryRun           bool     `json:"dry_run,omitempty"`

	Message string `json:"message,omitempty"`
}
