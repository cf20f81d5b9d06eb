package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/location-finder/internal/resilience"
)

func TestNearbyPlaces_Success(t *testing.T) {
	var gotAuth string
	var gotBody NearbyPlacesRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/maps/places/nearby", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"places": [
			{"place_id": "p1", "name": "Joe's Coffee", "latitude": 30.2, "longitude": -97.7, "rating": 4.5, "review_count": 120, "formatted_address": "123 Main St"},
			{"id": "p2", "name": "Brew Lab", "lat": 30.3, "lng": -97.8, "rating": 4.1, "user_ratings_total": 88, "address": "456 Oak Ave"}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, func() string { return "tok-1" })
	resp, err := c.NearbyPlaces(context.Background(), NearbyPlacesRequest{
		Lat: 30.2672, Lng: -97.7431, RadiusMiles: 5, BusinessType: "coffee_shop", Limit: 20,
	})
	require.NoError(t, err)
	require.Len(t, resp.Places, 2)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.InDelta(t, 30.2672, gotBody.Lat, 0.0001)
	assert.Equal(t, "coffee_shop", gotBody.BusinessType)

	// Alternate field names resolve through the accessors.
	p1 := resp.Places[0]
	assert.Equal(t, "p1", p1.Identifier())
	lat, lng := p1.Coordinates()
	assert.InDelta(t, 30.2, lat, 0.0001)
	assert.InDelta(t, -97.7, lng, 0.0001)
	assert.Equal(t, 120, p1.Reviews())
	assert.Equal(t, "123 Main St", p1.FullAddress())

	p2 := resp.Places[1]
	assert.Equal(t, "p2", p2.Identifier())
	assert.Equal(t, 88, p2.Reviews())
	assert.Equal(t, "456 Oak Ave", p2.FullAddress())
}

func TestPost_Non2xxCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail": "rate limited"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.NearbyPlaces(context.Background(), NearbyPlacesRequest{})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, "rate limited", se.Detail)
}

func TestPost_Non2xxWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `upstream exploded`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.Demographics(context.Background(), DemographicsRequest{})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Empty(t, se.Detail)
	assert.Contains(t, se.Error(), "status 502")
}

func TestCollectFootTraffic_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail": "authentication required"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.CollectFootTraffic(context.Background(), FootTrafficRequest{
		Latitude: 30.2672, Longitude: -97.7431, RadiusMeters: 8046,
	})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Status)
}

func TestCollectFootTraffic_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foot-traffic/collect-and-analyze", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"area_vitality_score": 72.5,
			"business_density_score": 61.0,
			"peak_day": "Saturday",
			"peak_hour": 14,
			"total_locations_sampled": 43,
			"dominant_place_types": ["restaurant", "bar"],
			"from_cache": true
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	resp, err := c.CollectFootTraffic(context.Background(), FootTrafficRequest{})
	require.NoError(t, err)
	assert.InDelta(t, 72.5, resp.AreaVitalityScore, 0.001)
	assert.Equal(t, "Saturday", resp.PeakDay)
	assert.Equal(t, 14, resp.PeakHour)
	assert.True(t, resp.FromCache)
}

func TestFindOptimalZones_Success(t *testing.T) {
	var gotBody OptimalZonesRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/find-optimal-zones", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"zones": [
				{"rank": 1, "center_lat": 30.25, "center_lng": -97.75, "radius_miles": 1, "score": 0.91, "reasons": ["high foot traffic"]},
				{"rank": 2, "center_lat": 30.28, "center_lng": -97.72, "radius_miles": 1, "score": 0.84}
			],
			"analysis_summary": "Two strong candidates west of downtown."
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	resp, err := c.FindOptimalZones(context.Background(), OptimalZonesRequest{
		CenterLat: 30.2672, CenterLng: -97.7431,
		TargetRadiusMiles: 1, AnalysisRadiusMiles: 5,
		ActiveLayers: []string{"demographics", "competition"},
		BusinessType: "coffee_shop", TopN: 3,
	})
	require.NoError(t, err)
	require.Len(t, resp.Zones, 2)
	assert.Equal(t, 1, resp.Zones[0].Rank)
	assert.InDelta(t, 0.91, resp.Zones[0].Score, 0.001)
	assert.Equal(t, "Two strong candidates west of downtown.", resp.AnalysisSummary)

	assert.Equal(t, 3, gotBody.TopN)
	assert.Equal(t, []string{"demographics", "competition"}, gotBody.ActiveLayers)
}

func TestInterpretCommand_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/interpret-map-command", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"directives": [
				{"action": "set_center", "lat": 30.2672, "lng": -97.7431, "address": "Austin, TX"},
				{"action": "set_radius", "radius_miles": 2}
			],
			"message": "Centered on Austin with a 2 mile radius."
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	resp, err := c.InterpretCommand(context.Background(), InterpretRequest{Prompt: "Set center to Austin, radius 2 miles"})
	require.NoError(t, err)
	require.Len(t, resp.Directives, 2)
	assert.Equal(t, ActionSetCenter, resp.Directives[0].Action)
	assert.Equal(t, ActionSetRadius, resp.Directives[1].Action)
	assert.InDelta(t, 2.0, resp.Directives[1].RadiusMiles, 0.001)
}

func TestPost_NoTokenSendsNoAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, func() string { return "" })
	_, err := c.Demographics(context.Background(), DemographicsRequest{})
	require.NoError(t, err)
}

func TestPost_RetriesTransientFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"places": []}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, WithRetry(resilience.Config{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}))
	_, err := c.NearbyPlaces(context.Background(), NearbyPlacesRequest{Lat: 30.2, Lng: -97.7})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPost_NoRetryOnClientError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil, WithRetry(resilience.Config{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
	}))
	_, err := c.NearbyPlaces(context.Background(), NearbyPlacesRequest{Lat: 30.2, Lng: -97.7})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "validation errors are not retried")
}
