// Package engine drives the opportunity pipeline against the dashboard
// API: it merges the two source collections into one canonical record set,
// runs the view/board/analytics computations over it, and applies status
// transitions optimistically with a forced reload on failure.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dkaplan/opportunity-pipeline/internal/models"
)

// Client is a typed HTTP client for the pipeline API. All requests carry
// the bearer credential issued by the external auth collaborator.
type Client struct {
	BaseURL string
	Token   string

	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type statusUpdate struct {
	Status models.Status `json:"status"`
}

func (c *Client) ListOpportunities(ctx context.Context) ([]models.GenericOpportunity, error) {
	var out []models.GenericOpportunity
	if err := c.do(ctx, http.MethodGet, "/api/v1/opportunities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListSpeaking(ctx context.Context) ([]models.SpeakingOpportunity, error) {
	var out []models.SpeakingOpportunity
	if err := c.do(ctx, http.MethodGet, "/api/v1/speaking-opportunities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateOpportunity(ctx context.Context, g models.GenericOpportunity) (models.GenericOpportunity, error) {
	var created models.GenericOpportunity
	err := c.do(ctx, http.MethodPost, "/api/v1/opportunities", g, &created)
	return created, err
}

func (c *Client) CreateSpeaking(ctx context.Context, s models.SpeakingOpportunity) (models.SpeakingOpportunity, error) {
	var created models.SpeakingOpportunity
	err := c.do(ctx, http.MethodPost, "/api/v1/speaking-opportunities", s, &created)
	return created, err
}

func (c *Client) UpdateOpportunity(ctx context.Context, g models.GenericOpportunity) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/opportunities/%d", g.ID), g, nil)
}

func (c *Client) UpdateSpeaking(ctx context.Context, s models.SpeakingOpportunity) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/speaking-opportunities/%d", s.ID), s, nil)
}

// UpdateStatus issues a status-only write to the record's type-specific
// endpoint.
func (c *Client) UpdateStatus(ctx context.Context, typ models.Type, id int64, status models.Status) error {
	path := fmt.Sprintf("%s/%d/status", collectionPath(typ), id)
	return c.do(ctx, http.MethodPut, path, statusUpdate{Status: status}, nil)
}

func (c *Client) DeleteOpportunity(ctx context.Context, typ models.Type, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", collectionPath(typ), id), nil, nil)
}

func collectionPath(typ models.Type) string {
	if typ == models.TypeSpeaking {
		return "/api/v1/speaking-opportunities"
	}
	return "/api/v1/opportunities"
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
