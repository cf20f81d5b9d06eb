package layer

import (
	"context"
	"errors"
	"net/http"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/location-finder/pkg/backend"
)

const metersPerMile = 1609.34

// FetchParams are the generic inputs every layer fetch starts from. Each
// builder translates them into its endpoint's request shape.
type FetchParams struct {
	Center      Point
	RadiusMiles float64
	Config      map[string]any
}

// Fetcher loads and normalizes layer data from the backend API.
type Fetcher struct {
	api backend.Client
}

// NewFetcher creates a Fetcher on top of a backend client.
func NewFetcher(api backend.Client) *Fetcher {
	return &Fetcher{api: api}
}

// Fetch dispatches to the builder for the layer type and returns a normalized
// result. Backend failures come back as errors carrying the backend-provided
// detail when present; the caller records them per layer.
func (f *Fetcher) Fetch(ctx context.Context, t Type, p FetchParams) (*Result, error) {
	switch t {
	case TypeDemographics:
		return f.fetchDemographics(ctx, p)
	case TypeCompetition:
		return f.fetchCompetition(ctx, p)
	case TypeTraffic:
		return f.fetchTraffic(ctx, p)
	case TypeDeepClone:
		return f.fetchDeepClone(ctx, p)
	default:
		return nil, eris.Errorf("layer: no fetcher for type %q", t)
	}
}

// fetchDemographics loads the demographic summary for the area.
func (f *Fetcher) fetchDemographics(ctx context.Context, p FetchParams) (*Result, error) {
	metrics := stringSlice(p.Config["metrics"])
	summary, err := f.api.Demographics(ctx, backend.DemographicsRequest{
		Lat:         p.Center.Lat,
		Lng:         p.Center.Lng,
		RadiusMiles: p.RadiusMiles,
		Metrics:     metrics,
	})
	if err != nil {
		return nil, fetchError(err, "demographics lookup failed")
	}
	return newSummaryResult(TypeDemographics, summary), nil
}

// fetchCompetition loads nearby competing businesses as point features.
func (f *Fetcher) fetchCompetition(ctx context.Context, p FetchParams) (*Result, error) {
	category, _ := p.Config["category"].(string)
	if q, _ := p.Config["search_query"].(string); q != "" {
		category = q
	}
	if category == "" {
		category = "business"
	}

	resp, err := f.api.NearbyPlaces(ctx, backend.NearbyPlacesRequest{
		Lat:          p.Center.Lat,
		Lng:          p.Center.Lng,
		RadiusMiles:  p.RadiusMiles,
		BusinessType: category,
		Limit:        intValue(p.Config["limit"], 20),
	})
	if err != nil {
		return nil, fetchError(err, "competitor search failed")
	}
	return newGeometryResult(TypeCompetition, placesToCollection(TypeCompetition, resp.Places)), nil
}

// fetchDeepClone loads businesses matching the category being cloned. An
// unset category is an awaiting-input state, not a failure: the user has not
// finished configuring the layer.
func (f *Fetcher) fetchDeepClone(ctx context.Context, p FetchParams) (*Result, error) {
	category, _ := p.Config["business_category"].(string)
	if category == "" {
		res := newGeometryResult(TypeDeepClone, geojson.NewFeatureCollection())
		res.Metadata.AwaitingCategory = true
		return res, nil
	}

	resp, err := f.api.NearbyPlaces(ctx, backend.NearbyPlacesRequest{
		Lat:          p.Center.Lat,
		Lng:          p.Center.Lng,
		RadiusMiles:  p.RadiusMiles,
		BusinessType: category,
		Limit:        intValue(p.Config["limit"], 20),
	})
	if err != nil {
		return nil, fetchError(err, "clone candidate search failed")
	}
	return newGeometryResult(TypeDeepClone, placesToCollection(TypeDeepClone, resp.Places)), nil
}

// fetchTraffic runs the two-phase traffic fetch: the metrics call is
// required, the heatmap call is best-effort enrichment. A 401 becomes the
// distinct requires-auth summary rather than an error.
func (f *Fetcher) fetchTraffic(ctx context.Context, p FetchParams) (*Result, error) {
	radiusMeters := p.RadiusMiles * metersPerMile
	force, _ := p.Config["force_refresh"].(bool)

	metrics, err := f.api.CollectFootTraffic(ctx, backend.FootTrafficRequest{
		Latitude:     p.Center.Lat,
		Longitude:    p.Center.Lng,
		RadiusMeters: radiusMeters,
		ForceRefresh: force,
	})
	if err != nil {
		var se *backend.StatusError
		if errors.As(err, &se) && se.Status == http.StatusUnauthorized {
			return newSummaryResult(TypeTraffic, map[string]any{"requires_auth": true}), nil
		}
		return nil, fetchError(err, "foot traffic analysis failed")
	}

	summary := trafficSummary(metrics)

	heatmap, err := f.api.TrafficHeatmap(ctx, backend.HeatmapRequest{
		Latitude:     p.Center.Lat,
		Longitude:    p.Center.Lng,
		RadiusMeters: radiusMeters,
	})
	if err != nil {
		zap.L().Warn("layer: traffic heatmap unavailable", zap.Error(err))
		summary["heatmap"] = nil
	} else {
		summary["heatmap"] = heatmap.Points
	}

	return newSummaryResult(TypeTraffic, summary), nil
}

// trafficSummary flattens the metrics response into the summary map.
func trafficSummary(m *backend.FootTrafficResponse) map[string]any {
	return map[string]any{
		"area_vitality_score":     m.AreaVitalityScore,
		"business_density_score":  m.BusinessDensityScore,
		"traffic_consistency":     m.TrafficConsistency,
		"peak_day":                m.PeakDay,
		"peak_hour":               m.PeakHour,
		"peak_traffic_score":      m.PeakTrafficScore,
		"total_locations_sampled": m.TotalLocationsSampled,
		"dominant_place_types":    m.DominantPlaceTypes,
		"avg_popular_times":       m.AvgPopularTimes,
		"current_avg_popularity":  m.CurrentAvgPopularity,
		"message":                 m.Message,
		"from_cache":              m.FromCache,
		"fresh_collection":        m.FreshCollection,
		"generated_at":            m.GeneratedAt,
	}
}

// placesToCollection converts nearby places into point features tagged with
// the layer type.
func placesToCollection(t Type, places []backend.Place) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range places {
		lat, lng := p.Coordinates()
		feat := geojson.NewFeature(orb.Point{lng, lat})
		feat.ID = p.Identifier()
		feat.Properties = geojson.Properties{
			"layer":   string(t),
			"name":    p.Name,
			"rating":  p.Rating,
			"reviews": p.Reviews(),
			"address": p.FullAddress(),
		}
		fc.Append(feat)
	}
	return fc
}

// fetchError prefers the backend-provided message, falling back to a generic
// one per layer.
func fetchError(err error, generic string) error {
	var se *backend.StatusError
	if errors.As(err, &se) && se.Detail != "" {
		return eris.New(se.Detail)
	}
	if se != nil {
		return eris.New(generic)
	}
	return eris.Wrap(err, generic)
}

func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		out := make([]string, len(vals))
		copy(out, vals)
		return out
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func intValue(v any, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return fallback
	}
}
