package finder

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/location-finder/internal/layer"
)

// Fetcher loads normalized data for one layer. *layer.Fetcher satisfies it;
// tests substitute their own.
type Fetcher interface {
	Fetch(ctx context.Context, t layer.Type, p layer.FetchParams) (*layer.Result, error)
}

// Controller owns the composite state and drives fetch cycles. All mutations
// are serialized under one mutex; fetches run in per-layer goroutines and
// re-enter through the same mutex at write-back. A generation stamp, bumped
// on every center or radius change, is captured when a fetch is issued and
// checked when it completes, so results belonging to a superseded location
// are dropped instead of overwriting newer state.
type Controller struct {
	fetcher Fetcher

	mu     sync.Mutex
	state  State
	gen    uint64            // bumped on center/radius changes
	seq    map[string]uint64 // per-layer fetch sequence
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// notifyMu serializes onChange callbacks, which fire from both mutating
	// callers and fetch goroutines.
	notifyMu sync.Mutex
	onChange func(State)
}

// NewController creates a controller with the given default radius. The
// controller lives until Close; in-flight fetches are abandoned then.
func NewController(fetcher Fetcher, defaultRadiusMiles float64) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		fetcher: fetcher,
		state: State{
			RadiusMiles: defaultRadiusMiles,
			ActiveTab:   TabAI,
		},
		seq:    make(map[string]uint64),
		ctx:    ctx,
		cancel: cancel,
	}
}

// OnChange registers a callback invoked with a fresh snapshot after every
// applied mutation, including fetch write-backs. Must be set before use.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Close cancels in-flight fetches and waits for their goroutines to finish.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
	c.wg.Wait()
}

// Wait blocks until no fetches are in flight. Intended for tests and
// one-shot CLI use; under a live UI new fetches may start at any time.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// SetCenter replaces the center wholesale. nil means "no location selected";
// all layers go dormant and in-flight results are discarded. The generation
// bumps only when the location actually moved: a same-value set must leave
// in-flight fetches valid, otherwise their write-backs get dropped with no
// replacement fetch coming.
func (c *Controller) SetCenter(p *layer.Point) {
	c.mutate(func() {
		if p == nil {
			if c.state.Center == nil {
				return
			}
			c.gen++
			c.state.Center = nil
			for _, in := range c.state.Layers {
				in.Loading = false
				in.Error = ""
			}
			return
		}
		if c.state.Center == nil || c.state.Center.Lat != p.Lat || c.state.Center.Lng != p.Lng {
			c.gen++
		}
		center := *p
		c.state.Center = &center
	})
}

// SetRadius sets the shared search radius. The value must be one of
// RadiusOptions.
func (c *Controller) SetRadius(miles float64) error {
	if !ValidRadius(miles) {
		return eris.Errorf("finder: radius %.1f is not a selectable option", miles)
	}
	c.mutate(func() {
		if c.state.RadiusMiles != miles {
			c.gen++
			c.state.RadiusMiles = miles
		}
	})
	return nil
}

// AddLayer activates a layer type. If an instance of that type already
// exists it is re-selected rather than duplicated.
func (c *Controller) AddLayer(t layer.Type) error {
	if !layer.Known(t) {
		return eris.Errorf("finder: unknown layer type %q", t)
	}
	c.mutate(func() {
		if existing := c.state.LayerByType(t); existing != nil {
			c.state.ActiveTab = Tab(t)
			return
		}
		in := layer.NewInstance(t)
		c.state.Layers = append(c.state.Layers, in)
		c.state.ActiveTab = Tab(t)
	})
	return nil
}

// RemoveLayer drops a layer instance. A no-op for unknown ids.
func (c *Controller) RemoveLayer(id string) {
	c.mutate(func() {
		for i, in := range c.state.Layers {
			if in.ID == id {
				c.state.Layers = append(c.state.Layers[:i], c.state.Layers[i+1:]...)
				delete(c.seq, id)
				if c.state.ActiveTab == Tab(in.Type) {
					c.state.ActiveTab = TabAI
				}
				return
			}
		}
	})
}

// ToggleVisibility flips a layer's visibility.
func (c *Controller) ToggleVisibility(id string) {
	c.mutate(func() {
		if in := c.state.LayerByID(id); in != nil {
			in.Visible = !in.Visible
		}
	})
}

// SetLayerConfig shallow-merges partial into a layer's config.
func (c *Controller) SetLayerConfig(id string, partial map[string]any) {
	c.mutate(func() {
		in := c.state.LayerByID(id)
		if in == nil {
			return
		}
		for k, v := range partial {
			in.Config[k] = v
		}
	})
}

// SetActiveTab switches the active panel.
func (c *Controller) SetActiveTab(tab Tab) error {
	if tab != TabAI && !layer.Known(layer.Type(tab)) {
		return eris.Errorf("finder: invalid tab %q", tab)
	}
	c.mutate(func() {
		c.state.ActiveTab = tab
	})
	return nil
}

// mutate applies fn under the lock, evaluates the refetch decision for every
// layer against the pre-mutation snapshot, issues the warranted fetches, and
// notifies the change listener.
func (c *Controller) mutate(fn func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	prev := c.state.clone()
	fn()
	next := c.state.clone()

	for _, in := range c.state.Layers {
		if !shouldRefetch(next.LayerByID(in.ID), prev, next) {
			continue
		}
		c.issueFetchLocked(in)
	}

	snapshot := c.state.clone()
	notify := c.onChange
	c.mu.Unlock()

	c.deliver(notify, snapshot)
}

// deliver invokes the change listener one caller at a time.
func (c *Controller) deliver(notify func(State), snapshot State) {
	if notify == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	notify(snapshot)
}

// issueFetchLocked marks the layer loading and starts its fetch goroutine.
// Caller holds the lock.
func (c *Controller) issueFetchLocked(in *layer.Instance) {
	in.Loading = true
	in.Error = ""

	c.seq[in.ID]++
	gen, seq := c.gen, c.seq[in.ID]
	id, typ := in.ID, in.Type

	params := layer.FetchParams{
		Center:      *c.state.Center,
		RadiusMiles: c.state.RadiusMiles,
		Config:      in.Clone().Config,
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res, err := c.fetcher.Fetch(c.ctx, typ, params)
		c.applyFetchResult(id, gen, seq, res, err)
	}()
}

// applyFetchResult writes a completed fetch back into the layer, unless the
// result is stale: issued against an older generation, superseded by a newer
// fetch for the same layer, or the layer was removed.
func (c *Controller) applyFetchResult(id string, gen, seq uint64, res *layer.Result, err error) {
	c.mu.Lock()

	if c.closed || gen != c.gen || seq != c.seq[id] {
		c.mu.Unlock()
		zap.L().Debug("finder: dropping stale fetch result",
			zap.String("layer_id", id),
			zap.Uint64("gen", gen),
		)
		return
	}

	in := c.state.LayerByID(id)
	if in == nil {
		c.mu.Unlock()
		return
	}

	in.Loading = false
	if err != nil {
		// Keep any previously fetched data; stale-but-present beats blank.
		in.Error = err.Error()
	} else {
		in.Error = ""
		in.Data = res
	}

	snapshot := c.state.clone()
	notify := c.onChange
	c.mu.Unlock()

	c.deliver(notify, snapshot)
}
