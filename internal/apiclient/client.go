// Package apiclient provides a typed client for the cantiere HTTP API,
// used by the cantierectl binary.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cantiere/internal/core"
)

const (
	requestTimeout = 30 * time.Second
	maxBodySize    = 8 << 20 // 8 MB, large CSV exports included
)

var (
	// ErrUnauthorized indicates a missing or rejected API token.
	ErrUnauthorized = errors.New("apiclient: unauthorized (check the API token)")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("apiclient: not found")
	// ErrConflict indicates the request lost against concurrent server state.
	ErrConflict = errors.New("apiclient: conflict")
)

// Client talks to a running cantiere API server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the given base URL.
// Returns nil if the URL is empty. The token may be empty when the server
// runs without authentication.
func NewClient(baseURL, token string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{},
	}
}

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]core.Project, error) {
	body, err := c.get(ctx, "/projects")
	if err != nil {
		return nil, err
	}

	var projects []core.Project
	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, fmt.Errorf("apiclient: parsing projects: %w", err)
	}
	return projects, nil
}

// ProjectStats returns the budget statistics for one project.
func (c *Client) ProjectStats(ctx context.Context, projectID string) (*core.BudgetStats, error) {
	body, err := c.get(ctx, "/projects/"+projectID+"/stats")
	if err != nil {
		return nil, err
	}

	var stats core.BudgetStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("apiclient: parsing stats: %w", err)
	}
	return &stats, nil
}

// ExportCSV returns the project cost ledger as CSV bytes.
func (c *Client) ExportCSV(ctx context.Context, projectID string) ([]byte, error) {
	return c.get(ctx, "/projects/"+projectID+"/export")
}

// ActiveConnection returns the active Gmail connection.
// ErrNotFound means no connection is currently active.
func (c *Client) ActiveConnection(ctx context.Context) (*core.GmailConnection, error) {
	body, err := c.get(ctx, "/gmail-connection")
	if err != nil {
		return nil, err
	}

	var conn core.GmailConnection
	if err := json.Unmarshal(body, &conn); err != nil {
		return nil, fmt.Errorf("apiclient: parsing connection: %w", err)
	}
	return &conn, nil
}

// ScanAccepted echoes the parameters of a queued inbox scan.
type ScanAccepted struct {
	Status       string    `json:"status"`
	ConnectionID string    `json:"connectionId"`
	ProjectID    string    `json:"projectId"`
	Since        time.Time `json:"since"`
}

// TriggerScan asks the server to queue an inbox scan for a project.
// A zero since leaves the window choice to the server.
func (c *Client) TriggerScan(ctx context.Context, projectID string, since time.Time) (*ScanAccepted, error) {
	payload := struct {
		ProjectID string    `json:"projectId"`
		Since     time.Time `json:"since"`
	}{ProjectID: projectID, Since: since}

	body, err := c.post(ctx, "/gmail-connection/scan", payload)
	if err != nil {
		return nil, err
	}

	var accepted ScanAccepted
	if err := json.Unmarshal(body, &accepted); err != nil {
		return nil, fmt.Errorf("apiclient: parsing scan response: %w", err)
	}
	return &accepted, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.roundTrip(ctx, http.MethodGet, path, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encoding request: %w", err)
	}
	return c.roundTrip(ctx, http.MethodPost, path, bytes.NewReader(data))
}

// roundTrip performs one API request and maps error statuses to sentinels.
func (c *Client) roundTrip(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("apiclient: reading response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, serverMessage(data))
	case http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", ErrConflict, serverMessage(data))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("apiclient: %s (status %d)", serverMessage(data), resp.StatusCode)
	}

	return data, nil
}

// serverMessage pulls the error string out of an API error body.
func serverMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return "no error detail"
}
