// Package backend provides the REST client for the opportunity-platform API
// consumed by the location finder: nearby places, demographics, foot traffic,
// optimal zones, and map-command interpretation.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/location-finder/internal/resilience"
)

// TokenSource supplies the bearer token for each request. An injected getter
// rather than ambient storage so tests and callers control auth explicitly.
type TokenSource func() string

// Client performs opportunity-platform API operations.
type Client interface {
	NearbyPlaces(ctx context.Context, req NearbyPlacesRequest) (*NearbyPlacesResponse, error)
	Demographics(ctx context.Context, req DemographicsRequest) (map[string]any, error)
	CollectFootTraffic(ctx context.Context, req FootTrafficRequest) (*FootTrafficResponse, error)
	TrafficHeatmap(ctx context.Context, req HeatmapRequest) (*HeatmapResponse, error)
	FindOptimalZones(ctx context.Context, req OptimalZonesRequest) (*OptimalZonesResponse, error)
	InterpretCommand(ctx context.Context, req InterpretRequest) (*InterpretResponse, error)
}

// StatusError is a non-2xx API response. Detail carries the backend-provided
// message when present.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

// HTTPStatus exposes the status for retry classification.
func (e *StatusError) HTTPStatus() int { return e.Status }

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetry enables retries of transient failures (429, 5xx, dropped
// connections). Without it each call is attempted once.
func WithRetry(cfg resilience.Config) Option {
	return func(c *httpClient) {
		c.retry = &cfg
	}
}

type httpClient struct {
	baseURL string
	token   TokenSource
	http    *http.Client
	retry   *resilience.Config
}

// NewClient creates an opportunity-platform API client. token may be nil for
// endpoints that do not require auth.
func NewClient(baseURL string, token TokenSource, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// post sends a JSON POST and decodes the 2xx response body into out.
// Non-2xx responses become *StatusError with the body's detail field.
func (c *httpClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return eris.Wrapf(err, "backend: marshal %s request", path)
	}

	if c.retry == nil {
		return c.send(ctx, path, body, out)
	}
	cfg := *c.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.Logger(path)
	}
	return resilience.Do(ctx, cfg, func(ctx context.Context) error {
		return c.send(ctx, path, body, out)
	})
}

func (c *httpClient) send(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrapf(err, "backend: create %s request", path)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "backend: send %s request", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "backend: read %s response", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode, Detail: errorDetail(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrapf(err, "backend: unmarshal %s response", path)
	}
	return nil
}

// errorDetail extracts the conventional {"detail": "..."} error message.
func errorDetail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch {
	case payload.Detail != "":
		return payload.Detail
	case payload.Message != "":
		return payload.Message
	default:
		return payload.Error
	}
}
