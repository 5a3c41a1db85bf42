// Package client provides a typed Go SDK for the kinship REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultURL is where a locally started server listens.
const DefaultURL = "http://localhost:3040"

// Client talks to one kinship server. The service fields group the calls
// by resource.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client

	People        *PersonService
	Links         *LinkService
	Relationships *RelationshipService
	Audit         *AuditService
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key for authentication.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithUserAgent replaces the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the given base URL (e.g. "http://localhost:3040").
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  "kinship-go",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	c.People = &PersonService{c: c}
	c.Links = &LinkService{c: c}
	c.Relationships = &RelationshipService{c: c}
	c.Audit = &AuditService{c: c}
	return c
}

// Health returns the liveness check response.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.get(ctx, "/api/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ready returns the readiness check. A not-ready server answers 503, which is
// returned as an *APIError alongside the decoded checks.
func (c *Client) Ready(ctx context.Context) (*ReadyResponse, error) {
	var resp ReadyResponse

	err := c.get(ctx, "/api/v1/ready", nil, &resp)

	var apiErr *APIError
	switch {
	case err == nil:
		return &resp, nil
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable:
		_ = json.Unmarshal([]byte(apiErr.Message), &resp) //nolint:errcheck // checks are best-effort.
		return &resp, err
	default:
		return nil, err
	}
}

// Stats returns aggregate family statistics.
func (c *Client) Stats(ctx context.Context) (*FamilyStats, error) {
	var resp FamilyStats
	if err := c.get(ctx, "/api/v1/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// maxErrorBody bounds how much of a failed response is kept in an APIError.
const maxErrorBody = 64 << 10

// do sends one API request. A non-nil body is sent as JSON; a 2xx response
// body is decoded into result when result is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("kinship: encoding %s %s: %w", method, path, err)
		}
		payload = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return fmt.Errorf("kinship: building request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("kinship: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // partial body is still useful.
		return parseAPIError(resp.StatusCode, raw)
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("kinship: decoding %s %s: %w", method, path, err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, result)
}

func (c *Client) del(ctx context.Context, path string, query url.Values, result any) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, result)
}

func personPath(id string) string {
	return "/api/v1/people/" + url.PathEscape(id)
}
