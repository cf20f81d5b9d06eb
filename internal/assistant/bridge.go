// Package assistant bridges natural-language map commands to composite-state
// mutations via the backend AI interpreter.
package assistant

import (
	"context"
	"math"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/location-finder/internal/finder"
	"github.com/sells-group/location-finder/internal/layer"
	"github.com/sells-group/location-finder/pkg/backend"
)

// ErrInterpretPending is returned when a prompt is submitted while another
// interpretation is still in flight. Prompts are never queued.
var ErrInterpretPending = eris.New("assistant: an interpretation is already in progress")

const clarificationFallback = "I couldn't work out what to change on the map. Try something like \"show demographics around downtown Austin\"."

// MapController is the slice of the finder controller the bridge drives.
// Directives go through the same mutation operations as direct interaction,
// so they cannot bypass the refetch rules.
type MapController interface {
	Snapshot() finder.State
	SetCenter(p *layer.Point)
	SetRadius(miles float64) error
	AddLayer(t layer.Type) error
	SetLayerConfig(id string, partial map[string]any)
}

// Bridge sends prompts to the AI interpreter and applies the returned
// directives onto the controller.
type Bridge struct {
	api  backend.Client
	ctrl MapController
	busy atomic.Bool
}

// NewBridge creates a Bridge.
func NewBridge(api backend.Client, ctrl MapController) *Bridge {
	return &Bridge{api: api, ctrl: ctrl}
}

// Interpret sends the prompt with current-state context and applies the
// resulting directives. The returned message is always user-facing: a
// confirmation when directives were applied, a clarification request when
// the prompt was uninterpretable (state untouched in that case).
func (b *Bridge) Interpret(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", eris.New("assistant: empty prompt")
	}

	if !b.busy.CompareAndSwap(false, true) {
		return "", ErrInterpretPending
	}
	defer b.busy.Store(false)

	st := b.ctrl.Snapshot()
	resp, err := b.api.InterpretCommand(ctx, backend.InterpretRequest{
		Prompt:  prompt,
		Context: contextFrom(st),
	})
	if err != nil {
		return "", eris.Wrap(err, "assistant: interpret prompt")
	}

	if len(resp.Directives) == 0 {
		if resp.Message != "" {
			return resp.Message, nil
		}
		return clarificationFallback, nil
	}

	for _, d := range resp.Directives {
		b.apply(d)
	}

	return resp.Message, nil
}

// apply executes one directive through the controller. A directive the
// controller rejects is logged and skipped; the rest still apply.
func (b *Bridge) apply(d backend.Directive) {
	switch d.Action {
	case backend.ActionSetCenter:
		b.ctrl.SetCenter(&layer.Point{Lat: d.Lat, Lng: d.Lng, Address: d.Address})

	case backend.ActionSetRadius:
		if err := b.ctrl.SetRadius(nearestRadius(d.RadiusMiles)); err != nil {
			zap.L().Warn("assistant: radius directive rejected", zap.Float64("miles", d.RadiusMiles), zap.Error(err))
		}

	case backend.ActionAddLayer:
		if err := b.ctrl.AddLayer(layer.Type(d.LayerType)); err != nil {
			zap.L().Warn("assistant: layer directive rejected", zap.String("type", d.LayerType), zap.Error(err))
		}

	case backend.ActionConfigureLayer:
		b.configureLayer(layer.Type(d.LayerType), d.Config)

	default:
		zap.L().Warn("assistant: unknown directive action", zap.String("action", d.Action))
	}
}

// configureLayer merges config into the layer of the given type, activating
// it first if absent.
func (b *Bridge) configureLayer(t layer.Type, cfg map[string]any) {
	if len(cfg) == 0 {
		return
	}
	if !layer.Known(t) {
		zap.L().Warn("assistant: configure directive for unknown layer", zap.String("type", string(t)))
		return
	}

	in := b.ctrl.Snapshot().LayerByType(t)
	if in == nil {
		if err := b.ctrl.AddLayer(t); err != nil {
			zap.L().Warn("assistant: activate layer for configure failed", zap.String("type", string(t)), zap.Error(err))
			return
		}
		in = b.ctrl.Snapshot().LayerByType(t)
		if in == nil {
			return
		}
	}
	b.ctrl.SetLayerConfig(in.ID, cfg)
}

// contextFrom summarizes state for the interpreter.
func contextFrom(st finder.State) backend.InterpretContext {
	c := backend.InterpretContext{
		RadiusMiles:  st.RadiusMiles,
		ActiveLayers: st.ActiveLayerTypes(),
	}
	if st.Center != nil {
		lat, lng := st.Center.Lat, st.Center.Lng
		c.CenterLat = &lat
		c.CenterLng = &lng
		c.Address = st.Center.Address
	}
	return c
}

// nearestRadius snaps an arbitrary requested radius onto the selectable
// option set.
func nearestRadius(miles float64) float64 {
	best := finder.RadiusOptions[0]
	for _, opt := range finder.RadiusOptions {
		if math.Abs(opt-miles) < math.Abs(best-miles) {
			best = opt
		}
	}
	return best
}
