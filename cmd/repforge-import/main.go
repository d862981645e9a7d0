package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/repforge/repforge/internal/config"
	"github.com/repforge/repforge/internal/ids"
	"github.com/repforge/repforge/internal/ingest"
	"github.com/repforge/repforge/internal/ingest/alpha"
	"github.com/repforge/repforge/internal/kvstore"
	"github.com/repforge/repforge/internal/workspace"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	csvPath := flag.String("path", "", "path to an Alpha Progression CSV export (required)")
	serverURL := flag.String("server", "", "Repforge server URL; when set, the export is uploaded instead of imported locally")
	apiKey := flag.String("api-key", os.Getenv("REPFORGE_AUTH_API_KEY"), "API key for upload mode")
	dryRun := flag.Bool("dry-run", false, "report counts without saving templates or max weights")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *csvPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: repforge-import -path export.csv [-config config.yaml | -server URL -api-key KEY] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Error("failed to open export", "path", *csvPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	if *dryRun {
		log.Info("DRY RUN mode: nothing will be saved")
	}

	ctx := context.Background()
	var result *ingest.Result
	if *serverURL != "" {
		result, err = upload(ctx, *serverURL, *apiKey, f, *dryRun)
	} else {
		result, err = importLocal(ctx, *configPath, f, *dryRun, log)
	}
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	printResult(log, result)
	log.Info("import complete")
}

func importLocal(ctx context.Context, configPath string, f *os.File, dryRun bool, log *slog.Logger) (*ingest.Result, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	kv, closeStore, err := kvstore.Open(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	defer closeStore()

	tmpl, err := workspace.OpenTemplates(ctx, kv, ids.UUID, log)
	if err != nil {
		return nil, fmt.Errorf("opening library: %w", err)
	}
	return alpha.NewProvider(tmpl, ids.UUID, log).Ingest(ctx, f, dryRun)
}

// upload posts the export to a running server's ingest endpoint.
func upload(ctx context.Context, serverURL, apiKey string, f *os.File, dryRun bool) (*ingest.Result, error) {
	u := strings.TrimRight(serverURL, "/") + "/api/v1/ingest/alpha"
	if dryRun {
		u += "?dry_run=true"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, f)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("X-API-Key", apiKey)

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading: %w", err)
	}
	defer resp.Body.Close()

	var result ingest.Result
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func printResult(log *slog.Logger, r *ingest.Result) {
	log.Info("import stats",
		"sessions", r.SessionsReceived,
		"workouts_saved", r.WorkoutsSaved,
		"sets_imported", r.SetsImported,
		"warmups_skipped", r.WarmupsSkipped,
		"dry_run", r.DryRun,
	)
	if len(r.MaxesRaised) > 0 {
		log.Info("max weights raised", "exercises", r.MaxesRaised)
	}
}
