package finder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/location-finder/internal/layer"
)

func pointAt(lat, lng float64) *layer.Point {
	return &layer.Point{Lat: lat, Lng: lng}
}

func stateWith(center *layer.Point, radius float64, layers ...*layer.Instance) State {
	return State{Center: center, RadiusMiles: radius, Layers: layers}
}

func fetchedInstance(t layer.Type) *layer.Instance {
	in := layer.NewInstance(t)
	in.Data = &layer.Result{Metadata: layer.Metadata{LayerType: t}}
	return in
}

func TestShouldRefetch_NullCenterSuppresses(t *testing.T) {
	in := layer.NewInstance(layer.TypeDemographics)
	prev := stateWith(pointAt(30.0, -97.0), 5, in)
	next := stateWith(nil, 5, in)

	assert.False(t, shouldRefetch(in, prev, next))
}

func TestShouldRefetch_InvisibleSuppresses(t *testing.T) {
	in := layer.NewInstance(layer.TypeDemographics)
	in.Visible = false

	// Invisible wins over every other delta.
	prev := stateWith(pointAt(30.0, -97.0), 5, in)
	next := stateWith(pointAt(31.0, -98.0), 10, in)

	assert.False(t, shouldRefetch(in, prev, next))
}

func TestShouldRefetch_NeverFetched(t *testing.T) {
	in := layer.NewInstance(layer.TypeCompetition)
	prev := stateWith(pointAt(30.0, -97.0), 5)
	next := stateWith(pointAt(30.0, -97.0), 5, in)

	assert.True(t, shouldRefetch(in, prev, next))
}

func TestShouldRefetch_NeverFetchedRegardlessOfRadiusChange(t *testing.T) {
	// An unfetched layer refetches via the initial-fetch rule whether or not
	// the radius moved; the radius rule is irrelevant until data exists.
	in := layer.NewInstance(layer.TypeCompetition)

	same := stateWith(pointAt(30.0, -97.0), 5, in)
	radiusChanged := stateWith(pointAt(30.0, -97.0), 10, in)

	assert.True(t, shouldRefetch(in, same, same))
	assert.True(t, shouldRefetch(in, same, radiusChanged))
}

func TestShouldRefetch_CenterMoved(t *testing.T) {
	in := fetchedInstance(layer.TypeDemographics)

	prev := stateWith(pointAt(30.2672, -97.7431), 5, in)

	tests := []struct {
		name string
		next State
		want bool
	}{
		{"identical center", stateWith(pointAt(30.2672, -97.7431), 5, in), false},
		{"tiny lat delta", stateWith(pointAt(30.26720001, -97.7431), 5, in), true},
		{"lng delta", stateWith(pointAt(30.2672, -97.7430), 5, in), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldRefetch(in, prev, tt.next))
		})
	}
}

func TestShouldRefetch_RadiusChangeNeedsData(t *testing.T) {
	fetched := fetchedInstance(layer.TypeDemographics)
	prev := stateWith(pointAt(30.0, -97.0), 5, fetched)
	next := stateWith(pointAt(30.0, -97.0), 10, fetched)
	assert.True(t, shouldRefetch(fetched, prev, next))

	// A layer that only errored has no data; radius change alone does not
	// warrant a retry.
	errored := layer.NewInstance(layer.TypeDemographics)
	errored.Error = "rate limited"
	prevErr := stateWith(pointAt(30.0, -97.0), 5, errored)
	nextErr := stateWith(pointAt(30.0, -97.0), 10, errored)
	assert.False(t, shouldRefetch(errored, prevErr, nextErr))
}

func TestShouldRefetch_SignificantConfigChange(t *testing.T) {
	prev := fetchedInstance(layer.TypeDeepClone)
	prev.Config["business_category"] = "coffee_shop"

	next := prev.Clone()
	next.Config["business_category"] = "bakery"

	prevState := stateWith(pointAt(30.0, -97.0), 5, prev)
	nextState := stateWith(pointAt(30.0, -97.0), 5, next)

	assert.True(t, shouldRefetch(next, prevState, nextState))
}

func TestShouldRefetch_SignificantConfigClearedToEmpty(t *testing.T) {
	prev := fetchedInstance(layer.TypeDeepClone)
	prev.Config["business_category"] = "coffee_shop"

	next := prev.Clone()
	next.Config["business_category"] = ""

	prevState := stateWith(pointAt(30.0, -97.0), 5, prev)
	nextState := stateWith(pointAt(30.0, -97.0), 5, next)

	assert.False(t, shouldRefetch(next, prevState, nextState), "clearing a category must not refetch")
}

func TestShouldRefetch_InsignificantConfigChange(t *testing.T) {
	prev := fetchedInstance(layer.TypeCompetition)
	next := prev.Clone()
	next.Config["limit"] = 50

	prevState := stateWith(pointAt(30.0, -97.0), 5, prev)
	nextState := stateWith(pointAt(30.0, -97.0), 5, next)

	assert.False(t, shouldRefetch(next, prevState, nextState))
}

func TestShouldRefetch_Deterministic(t *testing.T) {
	in := fetchedInstance(layer.TypeCompetition)
	prev := stateWith(pointAt(30.0, -97.0), 5, in)
	next := stateWith(pointAt(31.0, -97.0), 5, in)

	first := shouldRefetch(in, prev, next)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, shouldRefetch(in, prev, next))
	}
}

func TestValidRadius(t *testing.T) {
	for _, opt := range RadiusOptions {
		assert.True(t, ValidRadius(opt))
	}
	assert.False(t, ValidRadius(3))
	assert.False(t, ValidRadius(0))
}
