package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/google/uuid"
)

// Client sends data to the RepCoach server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the RepCoach server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// FetchPlan downloads a stored plan with its planned sets.
func (c *Client) FetchPlan(ctx context.Context, planID uuid.UUID) (*models.PlanDetail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/api/v1/plans/"+planID.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching plan: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("plan request failed (status %d): %s", resp.StatusCode, body)
	}

	var detail models.PlanDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("decoding plan: %w", err)
	}
	return &detail, nil
}

// uploadResult is the server's answer to a set log upload.
type uploadResult struct {
	Received int   `json:"received"`
	Inserted int64 `json:"inserted"`
}

// SendSession POSTs a finished session to the server's set log endpoint and
// returns the number of rows the server stored. Retries up to 3 times with
// exponential backoff; client errors (4xx) are not retried.
func (c *Client) SendSession(ctx context.Context, fs models.FinishedSession) (int64, error) {
	data, err := json.Marshal(fs)
	if err != nil {
		return 0, fmt.Errorf("marshaling session: %w", err)
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff * time.Duration(1<<uint(attempt-1))):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/setlogs", bytes.NewReader(data))
		if err != nil {
			return 0, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var res uploadResult
			if err := json.Unmarshal(body, &res); err != nil {
				return 0, fmt.Errorf("decoding upload result: %w", err)
			}
			return res.Inserted, nil
		}
		lastErr = fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return 0, lastErr
		}
	}

	return 0, fmt.Errorf("after 3 attempts: %w", lastErr)
}
