package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/repforge/repforge/internal/models"
	"github.com/repforge/repforge/internal/units"
)

// HTTPClient implements DataSource by calling the Repforge REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the workspace lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey is
// sent on every request and is only needed for edits.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do sends a request and decodes a JSON response into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode body: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) Program(ctx context.Context) (models.Program, error) {
	var p models.Program
	err := c.do(ctx, http.MethodGet, "/api/v1/program", nil, nil, &p)
	return p, err
}

func (c *HTTPClient) WorkoutTemplates(ctx context.Context) ([]models.Workout, error) {
	var out []models.Workout
	err := c.do(ctx, http.MethodGet, "/api/v1/library/workouts", nil, nil, &out)
	return out, err
}

func (c *HTTPClient) WeekTemplates(ctx context.Context) ([]models.WeekTemplate, error) {
	var out []models.WeekTemplate
	err := c.do(ctx, http.MethodGet, "/api/v1/library/weeks", nil, nil, &out)
	return out, err
}

func (c *HTTPClient) ProgramTemplates(ctx context.Context) ([]models.Program, error) {
	var out []models.Program
	err := c.do(ctx, http.MethodGet, "/api/v1/library/programs", nil, nil, &out)
	return out, err
}

func (c *HTTPClient) LoadWorkout(ctx context.Context, libraryID, weekID string, day int) (string, error) {
	body := map[string]any{"weekId": weekID, "day": day}
	var resp struct {
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/library/workouts/"+url.PathEscape(libraryID)+"/load", nil, body, &resp)
	return resp.ID, err
}

func (c *HTTPClient) MaxWeights(ctx context.Context) ([]models.MaxWeightRecord, error) {
	var out []models.MaxWeightRecord
	err := c.do(ctx, http.MethodGet, "/api/v1/maxweights", nil, nil, &out)
	return out, err
}

func (c *HTTPClient) SetMaxWeight(ctx context.Context, exerciseName, weight string, unit units.Unit) (models.MaxWeightRecord, error) {
	body := map[string]string{"weight": weight, "unit": string(unit)}
	var rec models.MaxWeightRecord
	err := c.do(ctx, http.MethodPut, "/api/v1/maxweights/"+url.PathEscape(exerciseName), nil, body, &rec)
	return rec, err
}

func (c *HTTPClient) WeightToPercentage(ctx context.Context, weight, exerciseName string) (string, error) {
	params := url.Values{}
	params.Set("weight", weight)
	params.Set("exercise", exerciseName)
	var resp struct {
		Percentage string `json:"percentage"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/calc/percentage", params, nil, &resp)
	return resp.Percentage, err
}

func (c *HTTPClient) PercentageToWeight(ctx context.Context, percentage, exerciseName string, unit units.Unit) (string, error) {
	params := url.Values{}
	params.Set("percentage", percentage)
	params.Set("exercise", exerciseName)
	params.Set("unit", string(unit))
	var resp struct {
		Weight string `json:"weight"`
	}
	err := c.do(ctx, http.MethodGet, "/api/v1/calc/weight", params, nil, &resp)
	return resp.Weight, err
}
