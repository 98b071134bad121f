package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/fitforge/internal/models"
	"github.com/meltforce/fitforge/internal/overload"
	"github.com/meltforce/fitforge/internal/progress"
	"github.com/meltforce/fitforge/internal/storage"
)

// HTTPClient implements DataSource by calling the FitForge REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return body, resp.StatusCode, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, resp.StatusCode, nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) PersonalRecord(ctx context.Context, _ int, exerciseID string) (*storage.PersonalRecordRow, error) {
	params := url.Values{}
	params.Set("exercise", exerciseID)

	body, status, err := c.get(ctx, "/api/v1/progress/records", params)
	if status == http.StatusNotFound {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record storage.PersonalRecordRow
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("httpclient: decode personal record: %w", err)
	}
	return &record, nil
}

func (c *HTTPClient) VolumeTrend(ctx context.Context, _ int, windowDays int) ([]storage.DayVolume, error) {
	params := url.Values{}
	params.Set("days", strconv.Itoa(windowDays))

	body, _, err := c.get(ctx, "/api/v1/progress/volume", params)
	if err != nil {
		return nil, err
	}

	var trend []storage.DayVolume
	if err := json.Unmarshal(body, &trend); err != nil {
		return nil, fmt.Errorf("httpclient: decode volume trend: %w", err)
	}
	return trend, nil
}

func (c *HTTPClient) RecoveryState(ctx context.Context, _ int) ([]progress.MuscleRecovery, error) {
	body, _, err := c.get(ctx, "/api/v1/progress/recovery", nil)
	if err != nil {
		return nil, err
	}

	var states []progress.MuscleRecovery
	if err := json.Unmarshal(body, &states); err != nil {
		return nil, fmt.Errorf("httpclient: decode recovery state: %w", err)
	}
	return states, nil
}

func (c *HTTPClient) Recommend(ctx context.Context, _ int, exerciseID string) (*overload.Recommendation, error) {
	params := url.Values{}
	params.Set("exercise", exerciseID)

	body, status, err := c.get(ctx, "/api/v1/recommendations", params)
	if status == http.StatusNotFound {
		return nil, overload.ErrNoHistory
	}
	if err != nil {
		return nil, err
	}

	var rec overload.Recommendation
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("httpclient: decode recommendation: %w", err)
	}
	return &rec, nil
}

func (c *HTTPClient) QuerySessions(ctx context.Context, start, end time.Time, _ int) ([]models.Session, error) {
	body, _, err := c.get(ctx, "/api/v1/sessions", timeParams(start, end))
	if err != nil {
		return nil, err
	}

	var sessions []models.Session
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ int) (*storage.DataStats, error) {
	body, _, err := c.get(ctx, "/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.DataStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	body, _, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}
