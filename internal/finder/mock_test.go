package finder

import (
	"context"
	"sync"

	"github.com/sells-group/location-finder/internal/layer"
)

// mockFetcher records fetch calls and delegates to a test-provided handler.
// Handlers may block to simulate slow network completions.
type mockFetcher struct {
	mu      sync.Mutex
	calls   []fetchCall
	handler func(t layer.Type, p layer.FetchParams) (*layer.Result, error)
}

type fetchCall struct {
	Type   layer.Type
	Params layer.FetchParams
}

func (m *mockFetcher) Fetch(_ context.Context, t layer.Type, p layer.FetchParams) (*layer.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, fetchCall{Type: t, Params: p})
	handler := m.handler
	m.mu.Unlock()

	if handler != nil {
		return handler(t, p)
	}
	return &layer.Result{Metadata: layer.Metadata{LayerType: t}}, nil
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockFetcher) call(i int) fetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[i]
}
