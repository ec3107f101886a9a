// Package scoring wraps the external AI match scoring service. Scoring is
// best-effort: any failure substitutes a fixed fallback score so record
// creation never blocks on the scorer.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
)

// FallbackScore is persisted when the scoring service is unreachable or
// returns garbage.
const FallbackScore = 50.0

// Scorer produces an AI match score for a new opportunity.
type Scorer interface {
	Score(ctx context.Context, req Request) float64
}

// Request is the scoring payload. Context carries free-form hints such as
// organization and title.
type Request struct {
	Type         models.Type       `json:"type"`
	Requirements []string          `json:"requirements"`
	Context      map[string]string `json:"context,omitempty"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

// Client calls the scoring service over HTTP.
type Client struct {
	BaseURL string
	Timeout time.Duration

	httpClient *http.Client
	log        *logrus.Logger
}

func NewClient(baseURL string, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		BaseURL:    baseURL,
		Timeout:    10 * time.Second,
		httpClient: &http.Client{},
		log:        log,
	}
}

// Score returns the service-computed match score, or FallbackScore on any
// failure. Failures are logged, never propagated.
func (c *Client) Score(ctx context.Context, req Request) float64 {
	score, err := c.score(ctx, req)
	if err != nil {
		c.log.WithError(err).WithField("type", req.Type).
			Warn("ai scoring failed, using fallback score")
		return FallbackScore
	}
	return models.ClampScore(score)
}

func (c *Client) score(ctx context.Context, req Request) (float64, error) {
	if c.BaseURL == "" {
		return 0, fmt.Errorf("scoring service not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("scoring request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("scoring service returned status %d", resp.StatusCode)
	}

	var parsed scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return parsed.Score, nil
}
