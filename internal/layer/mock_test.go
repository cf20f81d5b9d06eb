package layer

import (
	"context"

	"github.com/sells-group/location-finder/pkg/backend"
)

// mockBackend is a hand-rolled backend.Client for fetcher tests. Each field
// overrides one endpoint; unset endpoints return zero values.
type mockBackend struct {
	nearbyFn    func(ctx context.Context, req backend.NearbyPlacesRequest) (*backend.NearbyPlacesResponse, error)
	demoFn      func(ctx context.Context, req backend.DemographicsRequest) (map[string]any, error)
	trafficFn   func(ctx context.Context, req backend.FootTrafficRequest) (*backend.FootTrafficResponse, error)
	heatmapFn   func(ctx context.Context, req backend.HeatmapRequest) (*backend.HeatmapResponse, error)
	zonesFn     func(ctx context.Context, req backend.OptimalZonesRequest) (*backend.OptimalZonesResponse, error)
	interpretFn func(ctx context.Context, req backend.InterpretRequest) (*backend.InterpretResponse, error)
}

func (m *mockBackend) NearbyPlaces(ctx context.Context, req backend.NearbyPlacesRequest) (*backend.NearbyPlacesResponse, error) {
	if m.nearbyFn != nil {
		return m.nearbyFn(ctx, req)
	}
	return &backend.NearbyPlacesResponse{}, nil
}

func (m *mockBackend) Demographics(ctx context.Context, req backend.DemographicsRequest) (map[string]any, error) {
	if m.demoFn != nil {
		return m.demoFn(ctx, req)
	}
	return map[string]any{}, nil
}

func (m *mockBackend) CollectFootTraffic(ctx context.Context, req backend.FootTrafficRequest) (*backend.FootTrafficResponse, error) {
	if m.trafficFn != nil {
		return m.trafficFn(ctx, req)
	}
	return &backend.FootTrafficResponse{}, nil
}

func (m *mockBackend) TrafficHeatmap(ctx context.Context, req backend.HeatmapRequest) (*backend.HeatmapResponse, error) {
	if m.heatmapFn != nil {
		return m.heatmapFn(ctx, req)
	}
	return &backend.HeatmapResponse{}, nil
}

func (m *mockBackend) FindOptimalZones(ctx context.Context, req backend.OptimalZonesRequest) (*backend.OptimalZonesResponse, error) {
	if m.zonesFn != nil {
		return m.zonesFn(ctx, req)
	}
	return &backend.OptimalZonesResponse{}, nil
}

func (m *mockBackend) InterpretCommand(ctx context.Context, req backend.InterpretRequest) (*backend.InterpretResponse, error) {
	if m.interpretFn != nil {
		return m.interpretFn(ctx, req)
	}
	return &backend.InterpretResponse{}, nil
}
