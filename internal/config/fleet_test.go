package config

import (
	"delivery-insertion-planner/internal/domain"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)

func TestLoadFleetDefaults(t *testing.T) {
	fleet, err := LoadFleet("", now)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultFleetConfig(now), fleet)
}

func TestLoadFleetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vehicles_per_depot: 3
cost_per_kilometer: 0.5
routing_profile: EUR_TRUCK_40T
window_start: "2026-03-02T06:00:00Z"
window_days: 1
stop_limit: 50
`), 0o600))

	fleet, err := LoadFleet(path, now)
	require.NoError(t, err)

	assert.Equal(t, 3, fleet.VehiclesPerDepot)
	assert.Equal(t, 0.5, fleet.CostPerKilometer)
	assert.Equal(t, 2.0, fleet.CostPerHour)
	assert.Equal(t, "EUR_TRUCK_40T", fleet.RoutingProfile)
	assert.Equal(t, time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC), fleet.WindowStart)
	assert.Equal(t, time.Date(2026, 3, 3, 6, 0, 0, 0, time.UTC), fleet.WindowEnd)
	assert.Equal(t, 50, fleet.StopLimit)
}

func TestLoadFleetRejectsInvalid(t *testing.T) {
	_, err := ParseFleet([]byte("vehicles_per_depot: 0\n"), domain.DefaultFleetConfig(now))
	require.Error(t, err)

	_, err = ParseFleet([]byte("window_end: tomorrow\n"), domain.DefaultFleetConfig(now))
	require.Error(t, err)

	_, err = LoadFleet(filepath.Join(t.TempDir(), "missing.yaml"), now)
	require.Error(t, err)
}

func TestDuration(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "250ms")
	d, err := Duration("POLL_INTERVAL", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	t.Setenv("POLL_INTERVAL", "")
	d, err = Duration("POLL_INTERVAL", time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	t.Setenv("POLL_INTERVAL", "soon")
	_, err = Duration("POLL_INTERVAL", time.Second)
	require.Error(t, err)
}
