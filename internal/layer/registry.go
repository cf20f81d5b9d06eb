package layer

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Definition is the static catalog entry for a layer type.
type Definition struct {
	Type        Type   `yaml:"type"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Color       string `yaml:"color"`

	// DefaultConfig seeds a new instance's config.
	DefaultConfig map[string]any `yaml:"default_config"`

	// SignificantFields are the config keys whose change warrants a refetch.
	SignificantFields []string `yaml:"significant_fields"`
}

type catalog struct {
	Layers []Definition `yaml:"layers"`
}

var (
	definitions map[Type]Definition
	ordered     []Type
)

func init() {
	var c catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		panic(fmt.Sprintf("layer: parse embedded catalog: %v", err))
	}
	if len(c.Layers) == 0 {
		panic("layer: embedded catalog is empty")
	}

	definitions = make(map[Type]Definition, len(c.Layers))
	for _, def := range c.Layers {
		if def.Type == "" || def.Label == "" {
			panic(fmt.Sprintf("layer: catalog entry missing type or label: %+v", def))
		}
		if _, dup := definitions[def.Type]; dup {
			panic(fmt.Sprintf("layer: duplicate catalog entry %q", def.Type))
		}
		definitions[def.Type] = def
		ordered = append(ordered, def.Type)
	}
}

// Get returns the catalog definition for a type. An unknown type is a
// programming error and panics.
func Get(t Type) Definition {
	def, ok := definitions[t]
	if !ok {
		panic(fmt.Sprintf("layer: unknown layer type %q", t))
	}
	return def
}

// Known reports whether t is a cataloged layer type.
func Known(t Type) bool {
	_, ok := definitions[t]
	return ok
}

// Types returns all cataloged layer types in catalog order.
func Types() []Type {
	out := make([]Type, len(ordered))
	copy(out, ordered)
	return out
}
