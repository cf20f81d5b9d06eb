package main

import (
	"net/http"
	"time"

	"github.com/sells-group/location-finder/internal/resilience"
	"github.com/sells-group/location-finder/pkg/backend"
	"github.com/sells-group/location-finder/pkg/geocode"
)

// newBackendClient builds the platform client for interactive surfaces.
// Fetch failures there surface on the layer for the user to retry, so the
// client itself never retries.
func newBackendClient() backend.Client {
	timeout := time.Duration(cfg.Backend.TimeoutSecs) * time.Second
	token := cfg.Backend.Token
	return backend.NewClient(cfg.Backend.BaseURL,
		func() string { return token },
		backend.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
}

// newRetryingBackendClient is for one-shot commands, where there is no retry
// affordance and a transient blip should not fail the run.
func newRetryingBackendClient() backend.Client {
	timeout := time.Duration(cfg.Backend.TimeoutSecs) * time.Second
	token := cfg.Backend.Token
	return backend.NewClient(cfg.Backend.BaseURL,
		func() string { return token },
		backend.WithHTTPClient(&http.Client{Timeout: timeout}),
		backend.WithRetry(resilience.DefaultConfig()),
	)
}

func newGeocodeClient() (geocode.Client, error) {
	opts := []geocode.Option{
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithRateLimit(cfg.Geocode.RateLimit),
	}
	if cfg.Geocode.BaseURL != "" {
		opts = append(opts, geocode.WithBaseURL(cfg.Geocode.BaseURL))
	}
	if cfg.Geocode.GoogleAPIKey != "" {
		opts = append(opts, geocode.WithGoogleAPIKey(cfg.Geocode.GoogleAPIKey))
	}
	if cfg.Geocode.CachePath != "" {
		opts = append(opts, geocode.WithCache(cfg.Geocode.CachePath, cfg.Geocode.CacheTTLDays))
	}
	return geocode.NewClient(opts...)
}
