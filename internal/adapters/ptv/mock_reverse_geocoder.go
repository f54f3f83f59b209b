package ptv

import (
	"context"
	"delivery-insertion-planner/internal/domain"
	"sync"
)

// MockReverseGeocoder answers from a fixed table keyed by Coordinates.Key,
// falling back to the key itself.
type MockReverseGeocoder struct {
	Addresses map[string]string
	Err       error

	mu    sync.Mutex
	calls int
}

func (m *MockReverseGeocoder) ReverseGeocode(ctx context.Context, coords domain.Coordinates) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.Err != nil {
		return "", m.Err
	}
	if addr, ok := m.Addresses[coords.Key()]; ok {
		return addr, nil
	}
	return coords.Key(), nil
}

func (m *MockReverseGeocoder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
