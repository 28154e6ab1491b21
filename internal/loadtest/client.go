// Package loadtest drives a running eventmatch server: a small API client,
// a concurrent request runner that checks response ordering, and a random
// seed generator to populate a store for the run.
package loadtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/eventmatch/internal/domain/types"
)

// Errors returned by Client.
var (
	ErrNotFound         = errors.New("volunteer not found")
	ErrBadRequest       = errors.New("bad request")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Client wraps http.Client with the eventmatch routes.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Matches fetches the ranked events for a volunteer.
func (c *Client) Matches(ctx context.Context, volunteerID string) ([]types.Match, error) {
	body, status, err := c.get(ctx, "/matches/"+url.PathEscape(volunteerID))
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		var matches []types.Match
		if err := json.Unmarshal(body, &matches); err != nil {
			return nil, fmt.Errorf("decode matches: %w", err)
		}
		return matches, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, errorMessage(body))
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, errorMessage(body))
	default:
		return nil, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, status, errorMessage(body))
	}
}

// Health returns nil when /healthz answers 200.
func (c *Client) Health(ctx context.Context) error {
	body, status, err := c.get(ctx, "/healthz")
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, status, strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil || e.Error == "" {
		return strings.TrimSpace(string(body))
	}
	return e.Error
}
