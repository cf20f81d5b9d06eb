package backend

import "context"

// FootTrafficRequest is the body for POST /foot-traffic/collect-and-analyze.
// The foot-traffic service measures distance in meters, unlike the maps
// endpoints.
type FootTrafficRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	ForceRefresh bool    `json:"force_refresh"`
}

// FootTrafficResponse is the analyzed foot-traffic profile for an area.
type FootTrafficResponse struct {
	AreaVitalityScore     float64        `json:"area_vitality_score"`
	BusinessDensityScore  float64        `json:"business_density_score"`
	TrafficConsistency    float64        `json:"traffic_consistency"`
	PeakDay               string         `json:"peak_day"`
	PeakHour              int            `json:"peak_hour"`
	PeakTrafficScore      float64        `json:"peak_traffic_score"`
	TotalLocationsSampled int            `json:"total_locations_sampled"`
	DominantPlaceTypes    []string       `json:"dominant_place_types"`
	AvgPopularTimes       map[string]any `json:"avg_popular_times"`
	CurrentAvgPopularity  float64        `json:"current_avg_popularity"`
	Message               string         `json:"message"`
	FromCache             bool           `json:"from_cache"`
	FreshCollection       bool           `json:"fresh_collection"`
	GeneratedAt           string         `json:"generated_at"`
}

// HeatmapRequest is the body for POST /foot-traffic/heatmap.
type HeatmapRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}

// HeatmapResponse is a grid of traffic intensity points.
type HeatmapResponse struct {
	Points []HeatmapPoint `json:"points"`
}

// HeatmapPoint is one cell of the traffic heatmap.
type HeatmapPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Intensity float64 `json:"intensity"`
}

// CollectFootTraffic runs the foot-traffic collection and analysis for an
// area. A 401 response is an expected outcome for signed-out users and is
// returned as a *StatusError for the caller to branch on.
func (c *httpClient) CollectFootTraffic(ctx context.Context, req FootTrafficRequest) (*FootTrafficResponse, error) {
	var resp FootTrafficResponse
	if err := c.post(ctx, "/foot-traffic/collect-and-analyze", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrafficHeatmap fetches the traffic intensity grid for an area.
func (c *httpClient) TrafficHeatmap(ctx context.Context, req HeatmapRequest) (*HeatmapResponse, error) {
	var resp HeatmapResponse
	if err := c.post(ctx, "/foot-traffic/heatmap", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
