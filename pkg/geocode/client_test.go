package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestSearch_NominatimSucceeds_NoGoogleCall(t *testing.T) {
	var googleCalled atomic.Int32

	nominatimSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "austin tx", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"lat": "30.2672", "lon": "-97.7431", "display_name": "Austin, Travis County, Texas"},
			{"lat": "30.5083", "lon": "-97.6789", "display_name": "Austin County, Texas"}
		]`)
	}))
	defer nominatimSrv.Close()

	googleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		googleCalled.Add(1)
		_, _ = io.WriteString(w, `{"status":"OK","results":[]}`)
	}))
	defer googleSrv.Close()

	g := &geocoder{
		httpClient:    http.DefaultClient,
		baseURL:       nominatimSrv.URL,
		userAgent:     "test-agent",
		googleKey:     "test-key",
		googleBaseURL: googleSrv.URL,
		limiter:       newTestLimiter(),
	}

	suggestions, err := g.Search(context.Background(), "austin tx", 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.InDelta(t, 30.2672, suggestions[0].Lat, 0.0001)
	assert.InDelta(t, -97.7431, suggestions[0].Lon, 0.0001)
	assert.Equal(t, "Austin, Travis County, Texas", suggestions[0].DisplayName)
	assert.Equal(t, "nominatim", suggestions[0].Source)
	assert.Equal(t, int32(0), googleCalled.Load(), "Google should not be called when Nominatim matches")
}

func TestSearch_NominatimEmpty_GoogleFallback(t *testing.T) {
	nominatimSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[]`)
	}))
	defer nominatimSrv.Close()

	googleSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "austin", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"OK","results":[
			{"geometry":{"location":{"lat":30.2672,"lng":-97.7431}},"formatted_address":"Austin, TX, USA"}
		]}`)
	}))
	defer googleSrv.Close()

	g := &geocoder{
		httpClient:    http.DefaultClient,
		baseURL:       nominatimSrv.URL,
		userAgent:     "test-agent",
		googleKey:     "test-key",
		googleBaseURL: googleSrv.URL,
		limiter:       newTestLimiter(),
	}

	suggestions, err := g.Search(context.Background(), "austin", 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "google", suggestions[0].Source)
	assert.Equal(t, "Austin, TX, USA", suggestions[0].DisplayName)
}

func TestSearch_NominatimError_NoFallbackConfigured(t *testing.T) {
	nominatimSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer nominatimSrv.Close()

	g := &geocoder{
		httpClient: http.DefaultClient,
		baseURL:    nominatimSrv.URL,
		userAgent:  "test-agent",
		limiter:    newTestLimiter(),
	}

	_, err := g.Search(context.Background(), "austin", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestSearch_SkipsUnparseableCoordinates(t *testing.T) {
	nominatimSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"lat": "not-a-number", "lon": "-97.7431", "display_name": "Bad"},
			{"lat": "30.2672", "lon": "-97.7431", "display_name": "Good"}
		]`)
	}))
	defer nominatimSrv.Close()

	g := &geocoder{
		httpClient: http.DefaultClient,
		baseURL:    nominatimSrv.URL,
		userAgent:  "test-agent",
		limiter:    newTestLimiter(),
	}

	suggestions, err := g.Search(context.Background(), "somewhere", 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Good", suggestions[0].DisplayName)
}

func TestSearch_CacheHitSkipsProvider(t *testing.T) {
	var calls atomic.Int32
	nominatimSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"lat": "30.2672", "lon": "-97.7431", "display_name": "Austin"}]`)
	}))
	defer nominatimSrv.Close()

	client, err := NewClient(
		WithBaseURL(nominatimSrv.URL),
		WithRateLimit(1000),
		WithCache(filepath.Join(t.TempDir(), "geocode.db"), 30),
	)
	require.NoError(t, err)
	defer client.Close() //nolint:errcheck

	first, err := client.Search(context.Background(), "Austin TX", 5)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Same normalized query, different spacing/case.
	second, err := client.Search(context.Background(), "  austin   tx ", 5)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0], second[0])
	assert.Equal(t, int32(1), calls.Load(), "second search should hit the cache")
}

func TestSearch_DefaultLimit(t *testing.T) {
	nominatimSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[]`)
	}))
	defer nominatimSrv.Close()

	g := &geocoder{
		httpClient: http.DefaultClient,
		baseURL:    nominatimSrv.URL,
		userAgent:  "test-agent",
		limiter:    newTestLimiter(),
	}

	_, err := g.Search(context.Background(), "x y z", 0)
	require.NoError(t, err)
}
