// Package finder implements the location-finder layer engine: composite map
// state, the refetch decision, and the controller that drives per-layer fetch
// cycles.
package finder

import "github.com/sells-group/location-finder/internal/layer"

// Tab identifies the active panel: a layer type or the AI assistant.
type Tab string

// TabAI is the natural-language assistant panel.
const TabAI Tab = "ai"

// RadiusOptions is the fixed set of selectable search radii in miles.
var RadiusOptions = []float64{1, 2, 5, 10, 25}

// ValidRadius reports whether miles is one of the selectable options.
func ValidRadius(miles float64) bool {
	for _, opt := range RadiusOptions {
		if opt == miles {
			return true
		}
	}
	return false
}

// State is the composite map state for one view: center, shared radius, the
// ordered layer set, and the active tab. Snapshots are deep copies; holding
// one never aliases controller-owned data.
type State struct {
	Center      *layer.Point      `json:"center"`
	RadiusMiles float64           `json:"radius_miles"`
	Layers      []*layer.Instance `json:"layers"`
	ActiveTab   Tab               `json:"active_tab"`
}

// LayerByID returns the instance with the given id, or nil.
func (s State) LayerByID(id string) *layer.Instance {
	for _, in := range s.Layers {
		if in.ID == id {
			return in
		}
	}
	return nil
}

// LayerByType returns the instance of the given type, or nil. At most one
// instance per type ever exists.
func (s State) LayerByType(t layer.Type) *layer.Instance {
	for _, in := range s.Layers {
		if in.Type == t {
			return in
		}
	}
	return nil
}

// ActiveLayerTypes returns the types of all visible layers in order.
func (s State) ActiveLayerTypes() []string {
	out := make([]string, 0, len(s.Layers))
	for _, in := range s.Layers {
		if in.Visible {
			out = append(out, string(in.Type))
		}
	}
	return out
}

// clone deep-copies the state.
func (s State) clone() State {
	cp := s
	if s.Center != nil {
		center := *s.Center
		cp.Center = &center
	}
	cp.Layers = make([]*layer.Instance, len(s.Layers))
	for i, in := range s.Layers {
		cp.Layers[i] = in.Clone()
	}
	return cp
}
