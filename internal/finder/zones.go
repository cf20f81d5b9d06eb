package finder

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"

	"github.com/sells-group/location-finder/internal/layer"
	"github.com/sells-group/location-finder/pkg/backend"
)

const defaultZoneTopN = 3

// ZoneQuery parameterizes an optimal-zone analysis over a state snapshot.
type ZoneQuery struct {
	TargetRadiusMiles float64
	BusinessType      string
	TopN              int
}

// ZoneReport is the ranked outcome of a zone analysis.
type ZoneReport struct {
	Zones   []backend.Zone `json:"zones"`
	Summary string         `json:"summary"`
}

// ZoneFinder issues one-shot optimal-zone analyses. Stateless; each call
// snapshots whatever layer data the state currently holds and ships it along
// so the backend can reuse it instead of re-fetching.
type ZoneFinder struct {
	api backend.Client
}

// NewZoneFinder creates a ZoneFinder.
func NewZoneFinder(api backend.Client) *ZoneFinder {
	return &ZoneFinder{api: api}
}

// Find requests ranked candidate sub-areas for the snapshot. A set center is
// required. Failures yield an empty zone list and an error; never partial
// rankings.
func (z *ZoneFinder) Find(ctx context.Context, st State, q ZoneQuery) (*ZoneReport, error) {
	if st.Center == nil {
		return nil, eris.New("finder: no center selected for zone analysis")
	}

	topN := q.TopN
	if topN <= 0 {
		topN = defaultZoneTopN
	}

	req := backend.OptimalZonesRequest{
		CenterLat:           st.Center.Lat,
		CenterLng:           st.Center.Lng,
		TargetRadiusMiles:   q.TargetRadiusMiles,
		AnalysisRadiusMiles: st.RadiusMiles,
		ActiveLayers:        st.ActiveLayerTypes(),
		BusinessType:        q.BusinessType,
		TopN:                topN,
	}

	// Already-fetched layer data rides along.
	if demo := st.LayerByType(layer.TypeDemographics); demo != nil && demo.Data != nil {
		req.DemographicsData = demo.Data.Summary
	}
	if comp := st.LayerByType(layer.TypeCompetition); comp != nil && comp.Data != nil && comp.Data.Collection != nil {
		req.Competitors = competitorPayload(comp.Data.Collection.Features)
	}

	resp, err := z.api.FindOptimalZones(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "finder: zone analysis")
	}

	return &ZoneReport{Zones: resp.Zones, Summary: resp.AnalysisSummary}, nil
}

// competitorPayload flattens competitor point features into the request
// shape the analysis endpoint expects.
func competitorPayload(features []*geojson.Feature) []map[string]any {
	out := make([]map[string]any, 0, len(features))
	for _, f := range features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		out = append(out, map[string]any{
			"id":      f.ID,
			"name":    f.Properties["name"],
			"lat":     pt.Lat(),
			"lng":     pt.Lon(),
			"rating":  f.Properties["rating"],
			"reviews": f.Properties["reviews"],
			"address": f.Properties["address"],
		})
	}
	return out
}
