package finder

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/location-finder/internal/layer"
	"github.com/sells-group/location-finder/pkg/geocode"
)

const (
	defaultDebounce = 300 * time.Millisecond
	minQueryLen     = 3
	suggestionLimit = 5
)

// Autocomplete resolves free-text input to coordinate suggestions with
// debouncing. Geocoder failures are swallowed: an empty suggestion list is an
// acceptable degraded state for a convenience feature.
type Autocomplete struct {
	geo       geocode.Client
	debounce  time.Duration
	onResults func(query string, suggestions []geocode.Suggestion)

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAutocomplete creates an Autocomplete delivering results to onResults.
// debounce <= 0 uses the default 300ms.
func NewAutocomplete(geo geocode.Client, debounce time.Duration, onResults func(string, []geocode.Suggestion)) *Autocomplete {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Autocomplete{
		geo:       geo,
		debounce:  debounce,
		onResults: onResults,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Input registers a keystroke. Queries shorter than three characters resolve
// to an empty list immediately without a network call; anything longer is
// searched after the debounce window, with pending timers replaced on each
// new keystroke. Every keystroke advances a sequence number, and only the
// lookup holding the latest sequence may deliver, so a slow provider call for
// an old query never overwrites the current query's results.
func (a *Autocomplete) Input(query string) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.seq++
	seq := a.seq

	trimmed := strings.TrimSpace(query)
	if len(trimmed) < minQueryLen {
		a.mu.Unlock()
		a.onResults(query, nil)
		return
	}

	a.timer = time.AfterFunc(a.debounce, func() {
		a.search(seq, trimmed)
	})
	a.mu.Unlock()
}

// search runs the geocode lookup and delivers results, unless closed or a
// newer query superseded this one while the lookup was in flight.
func (a *Autocomplete) search(seq uint64, query string) {
	a.mu.Lock()
	if a.closed || seq != a.seq {
		a.mu.Unlock()
		return
	}
	a.wg.Add(1)
	a.mu.Unlock()
	defer a.wg.Done()

	suggestions, err := a.geo.Search(a.ctx, query, suggestionLimit)
	if err != nil {
		zap.L().Warn("finder: address search failed", zap.String("query", query), zap.Error(err))
		suggestions = nil
	}

	a.mu.Lock()
	stale := a.closed || seq != a.seq
	a.mu.Unlock()
	if stale {
		return
	}
	a.onResults(query, suggestions)
}

// Select converts a chosen suggestion into a center point. This is the only
// path that produces a point with a populated address.
func (a *Autocomplete) Select(s geocode.Suggestion) layer.Point {
	return layer.Point{
		Lat:     s.Lat,
		Lng:     s.Lon,
		Address: s.DisplayName,
	}
}

// Close stops the pending timer and suppresses any late delivery, so no
// suggestion update fires after teardown.
func (a *Autocomplete) Close() {
	a.mu.Lock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	a.cancel()
	a.wg.Wait()
}
