// Package layer defines the map overlay types, their static catalog, and the
// fetcher that loads and normalizes per-layer data from the backend.
package layer

import "github.com/google/uuid"

// Type identifies a map overlay kind. The set is closed; the registry panics
// on anything else.
type Type string

const (
	TypeDemographics Type = "demographics"
	TypeCompetition  Type = "competition"
	TypeTraffic      Type = "traffic"
	TypeDeepClone    Type = "deep_clone"

	// TypeCenterPoint is the implicit marker layer for the selected center.
	// It has no fetcher and never appears in the composite layer set.
	TypeCenterPoint Type = "center_point"
)

// Point is a selected map location. Address is set only when the point came
// from an address suggestion; map clicks leave it empty.
type Point struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// Instance is one active overlay with its own visibility, fetch lifecycle,
// and configuration. Owned exclusively by the finder state; nothing else
// holds a reference.
type Instance struct {
	ID      string         `json:"id"`
	Type    Type           `json:"type"`
	Visible bool           `json:"visible"`
	Loading bool           `json:"loading"`
	Error   string         `json:"error,omitempty"`
	Data    *Result        `json:"data,omitempty"`
	Config  map[string]any `json:"config"`
}

// NewInstance creates a fresh visible instance of a layer type with the
// catalog's default configuration. Panics on unknown type.
func NewInstance(t Type) *Instance {
	def := Get(t)
	cfg := make(map[string]any, len(def.DefaultConfig))
	for k, v := range def.DefaultConfig {
		cfg[k] = v
	}
	return &Instance{
		ID:      uuid.NewString(),
		Type:    t,
		Visible: true,
		Config:  cfg,
	}
}

// Fetched reports whether this instance has ever completed a fetch attempt.
func (in *Instance) Fetched() bool {
	return in.Data != nil || in.Loading || in.Error != ""
}

// Clone returns a deep copy of the instance. Result data is immutable after
// normalization, so the pointer is shared.
func (in *Instance) Clone() *Instance {
	cp := *in
	cp.Config = make(map[string]any, len(in.Config))
	for k, v := range in.Config {
		cp.Config[k] = v
	}
	return &cp
}
