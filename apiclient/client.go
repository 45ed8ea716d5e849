// Package apiclient talks to the codefossils REST API. Client satisfies
// pipeline.Backend so a Browser can page through a remote server.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"codefossils/logger"
	"codefossils/models"
)

var (
	// ErrRefreshCooldown is returned when the server rejects a refresh with 429.
	ErrRefreshCooldown = errors.New("refresh on cooldown")
	// ErrRefreshInProgress is returned when the server rejects a refresh with 409.
	ErrRefreshInProgress = errors.New("refresh already in progress")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status code %d", e.StatusCode)
	}
	return fmt.Sprintf("status code %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps refresh rejections onto the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRefreshCooldown
	case http.StatusConflict:
		return ErrRefreshInProgress
	}
	return nil
}

// Client represents a codefossils API client
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// NewClient returns a client for the API rooted at baseURL.
func NewClient(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    u,
	}, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = params.Encode()
	return u.String()
}

// ListRepos fetches one page of repositories for q.
func (c *Client) ListRepos(ctx context.Context, q models.Query, page, perPage int) (*models.RepoListResponse, error) {
	q = q.Normalize()
	params := url.Values{}
	if q.Category != models.CategoryAll {
		params.Set("category", string(q.Category))
	}
	params.Set("sort", string(q.Sort))
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	var out models.RepoListResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("/api/repos", params), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch repos: %w", err)
	}
	if out.Repos == nil {
		out.Repos = []models.Repository{}
	}
	return &out, nil
}

// TriggerRefresh asks the server to start an ingestion run.
func (c *Client) TriggerRefresh(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, c.endpoint("/api/repos/refresh", nil), nil); err != nil {
		return fmt.Errorf("failed to trigger refresh: %w", err)
	}
	return nil
}

// Stats fetches per-category counts.
func (c *Client) Stats(ctx context.Context) (*models.StatsResponse, error) {
	var out models.StatsResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("/api/stats", nil), &out); err != nil {
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logger.Debug("Calling API", zap.String("method", method), zap.String("url", reqURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retry_after"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Message = body.Error
		apiErr.RetryAfter = body.RetryAfter
	}
	return apiErr
}
