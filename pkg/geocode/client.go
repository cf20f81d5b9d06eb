// Package geocode provides free-text address search via Nominatim (primary)
// and the Google Geocoding API (fallback).
package geocode

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Client resolves free-text queries to ranked coordinate suggestions.
type Client interface {
	// Search returns up to limit suggestions for a free-text query, best
	// match first. An empty result is not an error.
	Search(ctx context.Context, query string, limit int) ([]Suggestion, error)

	// Close releases the suggestion cache, if one is configured.
	Close() error
}

// Suggestion is one candidate resolution of a query.
type Suggestion struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
	Source      string  `json:"source"` // "nominatim" or "google"
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithGoogleAPIKey enables the Google Geocoding API as a fallback.
func WithGoogleAPIKey(key string) Option {
	return func(g *geocoder) {
		g.googleKey = key
	}
}

// WithHTTPClient sets a custom HTTP client for all providers.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithBaseURL overrides the Nominatim base URL.
func WithBaseURL(url string) Option {
	return func(g *geocoder) {
		g.baseURL = url
	}
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy requires
// an identifying agent.
func WithUserAgent(ua string) Option {
	return func(g *geocoder) {
		g.userAgent = ua
	}
}

// WithRateLimit sets the requests-per-second limit for provider calls.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCache enables the SQLite suggestion cache at the given path. TTL days
// of zero means cached entries never expire.
func WithCache(path string, ttlDays int) Option {
	return func(g *geocoder) {
		g.cachePath = path
		g.cacheTTLDays = ttlDays
	}
}

type geocoder struct {
	httpClient    *http.Client
	baseURL       string
	userAgent     string
	googleKey     string
	googleBaseURL string
	limiter       *rate.Limiter
	cache         *suggestionCache
	cachePath     string
	cacheTTLDays  int
}

// NewClient creates a geocoding Client with the given options.
func NewClient(opts ...Option) (Client, error) {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://nominatim.openstreetmap.org",
		userAgent:  "sells-group-location-finder/1.0",
		limiter:    rate.NewLimiter(1, 1), // Nominatim policy: 1 req/s
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.cachePath != "" {
		cache, err := openCache(g.cachePath)
		if err != nil {
			return nil, err
		}
		g.cache = cache
	}

	return g, nil
}

// Search resolves a query via Nominatim, falling back to Google when
// Nominatim errors or returns nothing and a key is configured.
func (g *geocoder) Search(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if limit <= 0 {
		limit = 5
	}

	if g.cache != nil {
		if cached, ok := g.cache.get(query, limit, g.cacheTTLDays); ok {
			return cached, nil
		}
	}

	suggestions, nomErr := g.searchNominatim(ctx, query, limit)
	if nomErr != nil || len(suggestions) == 0 {
		if g.googleKey != "" {
			googleSuggestions, googleErr := g.searchGoogle(ctx, query, limit)
			if googleErr == nil && len(googleSuggestions) > 0 {
				suggestions, nomErr = googleSuggestions, nil
			}
		}
	}
	if nomErr != nil {
		return nil, nomErr
	}

	if g.cache != nil && len(suggestions) > 0 {
		g.cache.put(query, suggestions)
	}

	return suggestions, nil
}

func (g *geocoder) Close() error {
	if g.cache != nil {
		return g.cache.close()
	}
	return nil
}
