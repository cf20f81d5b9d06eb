package backend

import "context"

// OptimalZonesRequest is the body for POST /maps/find-optimal-zones.
// DemographicsData and Competitors carry whatever the active layers currently
// hold so the analysis can reuse already-fetched data.
type OptimalZonesRequest struct {
	CenterLat           float64          `json:"center_lat"`
	CenterLng           float64          `json:"center_lng"`
	TargetRadiusMiles   float64          `json:"target_radius_miles"`
	AnalysisRadiusMiles float64          `json:"analysis_radius_miles"`
	ActiveLayers        []string         `json:"active_layers"`
	BusinessType        string           `json:"business_type"`
	DemographicsData    map[string]any   `json:"demographics_data,omitempty"`
	Competitors         []map[string]any `json:"competitors,omitempty"`
	TopN                int              `json:"top_n"`
}

// OptimalZonesResponse is the ranked zone analysis result.
type OptimalZonesResponse struct {
	Zones           []Zone `json:"zones"`
	AnalysisSummary string `json:"analysis_summary"`
}

// Zone is one ranked candidate sub-area.
type Zone struct {
	Rank        int      `json:"rank"`
	CenterLat   float64  `json:"center_lat"`
	CenterLng   float64  `json:"center_lng"`
	RadiusMiles float64  `json:"radius_miles"`
	Score       float64  `json:"score"`
	Reasons     []string `json:"reasons"`
}

// FindOptimalZones requests ranked candidate sub-areas within the analysis
// radius.
func (c *httpClient) FindOptimalZones(ctx context.Context, req OptimalZonesRequest) (*OptimalZonesResponse, error) {
	var resp OptimalZonesResponse
	if err := c.post(ctx, "/maps/find-optimal-zones", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
