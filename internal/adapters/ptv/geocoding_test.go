package ptv

import (
	"context"
	"delivery-insertion-planner/internal/domain"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAddressCache struct {
	mu sync.Mutex
	m  map[string]string
}

func (c *memoryAddressCache) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := c.m[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (c *memoryAddressCache) PutMany(ctx context.Context, addresses map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range addresses {
		c.m[k] = v
	}
	return nil
}

func TestReverseGeocoderUsesCache(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, reverseGeocodePath+"/49.01/8.4", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apiKey"))
		_, _ = w.Write([]byte(`{"locations":[{"formattedAddress":"Haid-und-Neu-Str. 15, 76131 Karlsruhe"}]}`))
	}))

	cache := &memoryAddressCache{m: map[string]string{}}
	g := NewReverseGeocoder(c, cache)
	coords := domain.Coordinates{Lat: 49.01, Lon: 8.4}

	for range 2 {
		addr, err := g.ReverseGeocode(context.Background(), coords)
		require.NoError(t, err)
		assert.Equal(t, "Haid-und-Neu-Str. 15, 76131 Karlsruhe", addr)
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Haid-und-Neu-Str. 15, 76131 Karlsruhe", cache.m[coords.Key()])
}

func TestReverseGeocoderDescription(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"description":"position is outside the map"}`))
	}))

	_, err := NewReverseGeocoder(c, nil).ReverseGeocode(context.Background(), domain.Coordinates{Lat: 1, Lon: 1})
	require.Error(t, err)

	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "position is outside the map", se.Description)
}

func TestReverseGeocoderNoAddress(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"locations":[]}`))
	}))

	_, err := NewReverseGeocoder(c, nil).ReverseGeocode(context.Background(), domain.Coordinates{Lat: 1, Lon: 1})
	require.ErrorIs(t, err, ErrNoAddress)
}

func TestReverseGeocoderRejectsInvalidCoordinates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request")
	}))

	_, err := NewReverseGeocoder(c, nil).ReverseGeocode(context.Background(), domain.Coordinates{Lat: 91, Lon: 0})
	require.ErrorIs(t, err, domain.ErrInvalidCoordinates)
}

func TestReverseGeocoderSharedLookupOutlivesCanceledCaller(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		_, _ = w.Write([]byte(`{"locations":[{"formattedAddress":"Karlstr. 1, Karlsruhe"}]}`))
	}))
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	t.Cleanup(unblock)

	g := NewReverseGeocoder(c, nil)
	coords := domain.Coordinates{Lat: 49.01, Lon: 8.4}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := g.ReverseGeocode(ctx, coords)
		first <- err
	}()

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("lookup never reached the server")
	}

	type outcome struct {
		addr string
		err  error
	}
	second := make(chan outcome, 1)
	go func() {
		addr, err := g.ReverseGeocode(context.Background(), coords)
		second <- outcome{addr, err}
	}()

	cancel()
	select {
	case err := <-first:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("canceled caller did not return")
	}

	unblock()
	select {
	case got := <-second:
		require.NoError(t, got.err)
		assert.Equal(t, "Karlstr. 1, Karlsruhe", got.addr)
	case <-time.After(5 * time.Second):
		t.Fatal("second caller did not return")
	}
}
