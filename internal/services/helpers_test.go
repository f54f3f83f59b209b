package services

import (
	"context"
	"delivery-insertion-planner/internal/adapters/ptv"
	"delivery-insertion-planner/internal/domain"
	"delivery-insertion-planner/internal/ports"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func testFleet() domain.FleetConfig {
	return domain.DefaultFleetConfig(testDay)
}

// newTestCatalog returns a catalog with a depot "1" followed by orders "2".."n".
func newTestCatalog(t *testing.T, n int) *domain.StopCatalog {
	t.Helper()

	c := domain.NewStopCatalog(domain.DefaultStopLimit)
	for i := range n {
		_, err := c.AddStop(domain.Coordinates{Lat: 49 + float64(i)/100, Lon: 8.4 + float64(i)/100}, "addr")
		require.NoError(t, err)
	}
	return c
}

func intPtr(n int) *int { return &n }

func running(unscheduled int) *domain.OptimizationResult {
	return &domain.OptimizationResult{
		Status:  "RUNNING",
		Metrics: &domain.ResultMetrics{NumberOfUnscheduledOrders: intPtr(unscheduled)},
	}
}

type testRoute struct {
	vehicle string
	depot   string
	orders  []string
}

// succeeded builds a terminal result in the service's shape: every route
// loads its orders at the depot, then visits them in the given order.
func succeeded(routes ...testRoute) *domain.OptimizationResult {
	res := &domain.OptimizationResult{
		Status:  domain.JobStatusSucceeded,
		Metrics: &domain.ResultMetrics{NumberOfUnscheduledOrders: intPtr(0)},
		Routes:  []domain.ResultRoute{},
	}

	for _, r := range routes {
		start := testDay.Add(8 * time.Hour)
		rr := domain.ResultRoute{
			VehicleID: r.vehicle,
			Start:     domain.ResultEndpoint{LocationID: r.depot, Departure: start.Format(time.RFC3339)},
			End:       domain.ResultEndpoint{LocationID: r.depot, Arrival: start.Add(5 * time.Hour).Format(time.RFC3339)},
		}

		pickups := domain.ResultAppointment{Breaks: []domain.BreakIn{}}
		for _, o := range r.orders {
			pickups.Tasks = append(pickups.Tasks, domain.TaskIn{OrderID: o, Type: "PICKUP", DepotID: r.depot})
		}
		rr.Stops = append(rr.Stops, domain.ResultStop{
			LocationID:   r.depot,
			Arrival:      start.Format(time.RFC3339),
			Appointments: []domain.ResultAppointment{pickups},
		})

		for i, o := range r.orders {
			rr.Stops = append(rr.Stops, domain.ResultStop{
				LocationID: o,
				Arrival:    start.Add(time.Duration(i+1) * time.Hour).Format(time.RFC3339),
				Appointments: []domain.ResultAppointment{{
					Tasks:  []domain.TaskIn{{OrderID: o, Type: "DELIVERY"}},
					Breaks: []domain.BreakIn{},
				}},
			})
		}

		res.Routes = append(res.Routes, rr)
	}

	return res
}

// waitForStops waits for the background stop requests of a job.
func waitForStops(t *testing.T, svc *ptv.MockOptimizationService, want int) {
	t.Helper()

	require.Eventually(t, func() bool { return svc.Stops() >= want }, 5*time.Second, 5*time.Millisecond)
	assert.Equal(t, want, svc.Stops())
}

func noSleep(context.Context, time.Duration) error { return nil }

// fakeClock advances only when the orchestrator sleeps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return ctx.Err()
}

type progressRecorder struct {
	mu     sync.Mutex
	events []ports.Progress
}

func (r *progressRecorder) Report(ctx context.Context, p ports.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, p)
}

func (r *progressRecorder) States() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.State)
	}
	return out
}
