package backend

import "context"

// Directive action names returned by the AI interpreter.
const (
	ActionSetCenter      = "set_center"
	ActionSetRadius      = "set_radius"
	ActionAddLayer       = "add_layer"
	ActionConfigureLayer = "configure_layer"
	ActionUnknown        = "unknown"
)

// InterpretRequest is the body for POST /ai/interpret-map-command. Context
// summarizes current map state so the model can resolve relative commands
// ("zoom out a bit", "same but for coffee shops").
type InterpretRequest struct {
	Prompt  string          `json:"prompt"`
	Context InterpretContext `json:"context"`
}

// InterpretContext is the state summary sent with each prompt.
type InterpretContext struct {
	CenterLat    *float64 `json:"center_lat,omitempty"`
	CenterLng    *float64 `json:"center_lng,omitempty"`
	Address      string   `json:"address,omitempty"`
	RadiusMiles  float64  `json:"radius_miles"`
	ActiveLayers []string `json:"active_layers"`
}

// InterpretResponse is the structured outcome of interpreting a prompt.
// Message is always user-facing; when Directives is empty the message is a
// clarification request rather than a confirmation.
type InterpretResponse struct {
	Directives []Directive `json:"directives"`
	Message    string      `json:"message"`
}

// Directive is one state mutation the interpreter wants applied.
type Directive struct {
	Action      string         `json:"action"`
	Lat         float64        `json:"lat,omitempty"`
	Lng         float64        `json:"lng,omitempty"`
	Address     string         `json:"address,omitempty"`
	RadiusMiles float64        `json:"radius_miles,omitempty"`
	LayerType   string         `json:"layer_type,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
}

// InterpretCommand sends a natural-language map command for interpretation.
func (c *httpClient) InterpretCommand(ctx context.Context, req InterpretRequest) (*InterpretResponse, error) {
	var resp InterpretResponse
	if err := c.post(ctx, "/ai/interpret-map-command", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
