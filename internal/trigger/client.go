package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Result is the decoded reply of a trigger server.
type Result struct {
	Success    bool   `json:"success"`
	Cmd        string `json:"cmd,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"-"`
}

// Client calls a trigger server over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the server at baseURL, e.g. LocalURL(port).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Health checks if the server is running and answers {"ok":true}
func (c *Client) Health(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false, fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to reach trigger server: %w", err)
	}
	defer resp.Body.Close()

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode health response (status %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode == http.StatusOK && body.OK, nil
}

type triggerRequestBody struct {
	Cmd    string `json:"cmd"`
	Text   string `json:"text,omitempty"`
	Action string `json:"action,omitempty"`
}

// Trigger posts cmd with params. Any JSON reply, including a 4xx, is returned
// as a Result; only transport and decoding failures are errors.
func (c *Client) Trigger(ctx context.Context, cmd string, params Params) (Result, error) {
	payload, err := json.Marshal(triggerRequestBody{Cmd: cmd, Text: params.Text, Action: params.Action})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode trigger request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/trigger", bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to reach trigger server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read trigger response: %w", err)
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, fmt.Errorf("unexpected trigger response (status %d): %q", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	result.StatusCode = resp.StatusCode
	return result, nil
}
