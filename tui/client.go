package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wisdombot/progress"
	"wisdombot/types"
)

// Client is a thin HTTP client for the renderd API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Status fetches the daemon snapshot.
func (c *Client) Status() (*types.StatusResponse, error) {
	resp, err := c.http.Get(c.baseURL + "/api/status")
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var status types.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &status, nil
}

// History fetches recent render records, newest first.
func (c *Client) History(limit int) ([]progress.Record, error) {
	resp, err := c.http.Get(fmt.Sprintf("%s/api/history?limit=%d", c.baseURL, limit))
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("history endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Count   int               `json:"count"`
		History []progress.Record `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return payload.History, nil
}

// SubmitRender asks the daemon to render the next quote. Returns the job id,
// or the daemon's refusal when a render is already in flight.
func (c *Client) SubmitRender(upload bool) (string, error) {
	body, _ := json.Marshal(map[string]bool{"upload": upload})

	resp, err := c.http.Post(c.baseURL+"/api/render", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("submit render: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		var fail struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&fail); err == nil && fail.Error != "" {
			return "", fmt.Errorf("render refused: %s", fail.Error)
		}
		return "", fmt.Errorf("render endpoint returned %d", resp.StatusCode)
	}

	var accepted struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return "", fmt.Errorf("decode render response: %w", err)
	}
	return accepted.JobID, nil
}
