package httpapi

import (
	"context"

	"github.com/sells-group/location-finder/pkg/backend"
	"github.com/sells-group/location-finder/pkg/geocode"
)

// stubBackend overrides endpoints per test; unset ones return zero values.
type stubBackend struct {
	nearbyFn    func(ctx context.Context, req backend.NearbyPlacesRequest) (*backend.NearbyPlacesResponse, error)
	demoFn      func(ctx context.Context, req backend.DemographicsRequest) (map[string]any, error)
	trafficFn   func(ctx context.Context, req backend.FootTrafficRequest) (*backend.FootTrafficResponse, error)
	heatmapFn   func(ctx context.Context, req backend.HeatmapRequest) (*backend.HeatmapResponse, error)
	zonesFn     func(ctx context.Context, req backend.OptimalZonesRequest) (*backend.OptimalZonesResponse, error)
	interpretFn func(ctx context.Context, req backend.InterpretRequest) (*backend.InterpretResponse, error)
}

func (m *stubBackend) NearbyPlaces(ctx context.Context, req backend.NearbyPlacesRequest) (*backend.NearbyPlacesResponse, error) {
	if m.nearbyFn != nil {
		return m.nearbyFn(ctx, req)
	}
	return &backend.NearbyPlacesResponse{}, nil
}

func (m *stubBackend) Demographics(ctx context.Context, req backend.DemographicsRequest) (map[string]any, error) {
	if m.demoFn != nil {
		return m.demoFn(ctx, req)
	}
	return map[string]any{}, nil
}

func (m *stubBackend) CollectFootTraffic(ctx context.Context, req backend.FootTrafficRequest) (*backend.FootTrafficResponse, error) {
	if m.trafficFn != nil {
		return m.trafficFn(ctx, req)
	}
	return &backend.FootTrafficResponse{}, nil
}

func (m *stubBackend) TrafficHeatmap(ctx context.Context, req backend.HeatmapRequest) (*backend.HeatmapResponse, error) {
	if m.heatmapFn != nil {
		return m.heatmapFn(ctx, req)
	}
	return &backend.HeatmapResponse{}, nil
}

func (m *stubBackend) FindOptimalZones(ctx context.Context, req backend.OptimalZonesRequest) (*backend.OptimalZonesResponse, error) {
	if m.zonesFn != nil {
		return m.zonesFn(ctx, req)
	}
	return &backend.OptimalZonesResponse{}, nil
}

func (m *stubBackend) InterpretCommand(ctx context.Context, req backend.InterpretRequest) (*backend.InterpretResponse, error) {
	if m.interpretFn != nil {
		return m.interpretFn(ctx, req)
	}
	return &backend.InterpretResponse{}, nil
}

// stubGeocoder records queries and replays canned suggestions.
type stubGeocoder struct {
	queries     []string
	suggestions []geocode.Suggestion
	err         error
}

func (g *stubGeocoder) Search(_ context.Context, query string, _ int) ([]geocode.Suggestion, error) {
	g.queries = append(g.queries, query)
	return g.suggestions, g.err
}

func (g *stubGeocoder) Close() error { return nil }
