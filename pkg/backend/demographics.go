package backend

import "context"

// DemographicsRequest is the body for POST /maps/demographics. Metrics names
// which demographic measures to include (population, income, age, ...).
type DemographicsRequest struct {
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	RadiusMiles float64  `json:"radius_miles"`
	Metrics     []string `json:"metrics"`
}

// Demographics returns the demographic summary for an area. The summary shape
// varies with the requested metrics, so it is passed through untyped.
func (c *httpClient) Demographics(ctx context.Context, req DemographicsRequest) (map[string]any, error) {
	var resp map[string]any
	if err := c.post(ctx, "/maps/demographics", req, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
