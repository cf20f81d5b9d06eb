package layer

import "github.com/paulmach/orb/geojson"

// Result is a normalized fetch outcome: either a geometry collection or a
// summary object, never both, tagged with the originating layer type.
type Result struct {
	Collection *geojson.FeatureCollection `json:"collection,omitempty"`
	Summary    map[string]any             `json:"summary,omitempty"`
	Metadata   Metadata                   `json:"metadata"`
}

// Metadata tags a result for routing into map rendering.
type Metadata struct {
	LayerType Type `json:"layer_type"`
	Count     int  `json:"count"`

	// AwaitingCategory marks the empty-but-valid result returned when a
	// required category config has not been chosen yet.
	AwaitingCategory bool `json:"awaiting_category,omitempty"`
}

// RequiresAuth reports whether this is the distinct signed-out outcome of the
// traffic layer; the UI shows a sign-in prompt instead of a retry button.
func (r *Result) RequiresAuth() bool {
	if r == nil || r.Summary == nil {
		return false
	}
	v, _ := r.Summary["requires_auth"].(bool)
	return v
}

// newGeometryResult builds a feature-collection result.
func newGeometryResult(t Type, fc *geojson.FeatureCollection) *Result {
	return &Result{
		Collection: fc,
		Metadata:   Metadata{LayerType: t, Count: len(fc.Features)},
	}
}

// newSummaryResult builds a summary result.
func newSummaryResult(t Type, summary map[string]any) *Result {
	return &Result{
		Summary:  summary,
		Metadata: Metadata{LayerType: t},
	}
}
