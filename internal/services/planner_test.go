package services

import (
	"context"
	"delivery-insertion-planner/internal/adapters/ptv"
	"delivery-insertion-planner/internal/domain"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlanner(t *testing.T, svc *ptv.MockOptimizationService, n int) (*Planner, *ptv.MockReverseGeocoder) {
	t.Helper()

	geo := &ptv.MockReverseGeocoder{}
	p, err := NewPlanner(testFleet(), geo, NewOrchestrator(svc, OrchestratorOptions{Sleep: noSleep}))
	require.NoError(t, err)

	for i := range n {
		_, err := p.AddStop(context.Background(), domain.Coordinates{Lat: 49 + float64(i)/100, Lon: 8.4})
		require.NoError(t, err)
	}
	return p, geo
}

func TestPlannerAddStop(t *testing.T) {
	p, geo := newTestPlanner(t, ptv.NewMockOptimizationService("job-1"), 0)
	geo.Addresses = map[string]string{"49.00000,8.40000": "Depot street 1"}

	depot, err := p.AddStop(context.Background(), domain.Coordinates{Lat: 49, Lon: 8.4})
	require.NoError(t, err)
	assert.Equal(t, "1", depot.ID)
	assert.True(t, depot.IsDepot)
	assert.Equal(t, "Depot street 1", depot.Address)

	order, err := p.AddStop(context.Background(), domain.Coordinates{Lat: 49.1, Lon: 8.5})
	require.NoError(t, err)
	assert.False(t, order.IsDepot)
	assert.Len(t, p.Stops(), 2)
}

func TestPlannerAddStopGeocodingFailureAddsNothing(t *testing.T) {
	p, geo := newTestPlanner(t, ptv.NewMockOptimizationService("job-1"), 1)
	geo.Err = errors.New("no address found")

	_, err := p.AddStop(context.Background(), domain.Coordinates{Lat: 49.1, Lon: 8.5})
	require.Error(t, err)
	assert.Len(t, p.Stops(), 1)
}

func TestPlannerAddStopLimitSkipsGeocoding(t *testing.T) {
	p, geo := newTestPlanner(t, ptv.NewMockOptimizationService("job-1"), domain.DefaultStopLimit)
	calls := geo.Calls()

	_, err := p.AddStop(context.Background(), domain.Coordinates{Lat: 49.1, Lon: 8.5})
	require.ErrorIs(t, err, domain.ErrStopLimitExceeded)
	assert.Equal(t, calls, geo.Calls())
}

func TestPlannerOptimizeWithoutDepot(t *testing.T) {
	svc := ptv.NewMockOptimizationService("job-1", succeeded())
	p, _ := newTestPlanner(t, svc, 0)

	_, err := p.Optimize(context.Background(), RunOptions{})
	require.ErrorIs(t, err, domain.ErrNoDepot)
	assert.Empty(t, svc.Submitted())
	assert.Equal(t, JobIdle, p.Job().State)
}

func TestPlannerIncrementalCycle(t *testing.T) {
	svc := ptv.NewMockOptimizationService("job-1",
		running(0), running(0),
		succeeded(testRoute{vehicle: "1", depot: "1", orders: []string{"3", "2"}}),
	)
	p, _ := newTestPlanner(t, svc, 3)

	mapped, err := p.Optimize(context.Background(), RunOptions{StopWhenFullyScheduled: true})
	require.NoError(t, err)
	waitForStops(t, svc, 1)
	require.Len(t, mapped.Paths, 1)

	paths := p.Paths()
	assert.Len(t, paths.Current, 1)
	assert.Empty(t, paths.Previous)
	assert.Equal(t, []string{"3", "2"}, ids(p.AnchorCandidates()))

	// Second cycle: a new stop goes right after stop 3.
	_, err = p.AddStop(context.Background(), domain.Coordinates{Lat: 48.9, Lon: 8.3})
	require.NoError(t, err)
	require.NoError(t, p.SetDirective(domain.InsertionDirective{Mode: domain.InsertionHardImmediatelyAfter, AnchorStopID: "3"}))

	svc.Statuses = []*domain.OptimizationResult{
		succeeded(testRoute{vehicle: "1", depot: "1", orders: []string{"3", "4", "2"}}),
	}
	_, err = p.Optimize(context.Background(), RunOptions{})
	require.NoError(t, err)

	submitted := svc.Submitted()
	require.Len(t, submitted, 2)
	second := submitted[1]
	assert.Equal(t, []domain.RespectedSequence{{TaskCategories: []string{"3", domain.CategoryNew, "2"}}},
		second.Constraints.Tasks.RespectedSequences)
	assert.Len(t, second.Constraints.Combinations.OrderVehicle, 2)

	s4, _ := p.StopByID("4")
	assert.True(t, s4.Used)
	assert.Equal(t, "1", s4.Assignment.VehicleID)

	paths = p.Paths()
	assert.Len(t, paths.Current, 1)
	assert.Len(t, paths.Previous, 1)
	assert.Len(t, paths.Current[0].Points, 5)
}

func TestPlannerFailedCycleKeepsState(t *testing.T) {
	svc := ptv.NewMockOptimizationService("job-1", succeeded(testRoute{vehicle: "1", depot: "1", orders: []string{"2"}}))
	p, _ := newTestPlanner(t, svc, 2)

	_, err := p.Optimize(context.Background(), RunOptions{})
	require.NoError(t, err)
	prev := p.Previous()
	before := p.Stops()

	svc.Statuses = []*domain.OptimizationResult{{Status: domain.JobStatusFailed, Description: "boom"}}
	_, err = p.Optimize(context.Background(), RunOptions{})
	require.ErrorIs(t, err, ErrJobFailed)

	assert.Same(t, prev, p.Previous())
	assert.Equal(t, before, p.Stops())

	// A result naming an unknown stop is rejected as a whole.
	svc.Statuses = []*domain.OptimizationResult{succeeded(testRoute{vehicle: "1", depot: "1", orders: []string{"2", "7"}})}
	_, err = p.Optimize(context.Background(), RunOptions{})
	require.ErrorIs(t, err, domain.ErrUnknownStop)
	assert.Same(t, prev, p.Previous())
	assert.Equal(t, before, p.Stops())
}

func TestPlannerStartOptimization(t *testing.T) {
	svc := ptv.NewMockOptimizationService("job-1", succeeded(testRoute{vehicle: "1", depot: "1", orders: []string{"2"}}))
	p, _ := newTestPlanner(t, svc, 2)

	require.NoError(t, p.StartOptimization(context.Background(), RunOptions{}))

	require.Eventually(t, func() bool {
		s, _ := p.StopByID("2")
		return s.Used
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool { return p.Job().State == JobSucceeded }, 5*time.Second, 10*time.Millisecond)
	assert.NoError(t, p.LastError())
}

func TestPlannerResultAppliedBeforeJobEnds(t *testing.T) {
	svc := ptv.NewMockOptimizationService("job-1",
		running(0),
		succeeded(testRoute{vehicle: "1", depot: "1", orders: []string{"2"}}),
	)
	svc.StopRelease = make(chan struct{})
	t.Cleanup(func() { close(svc.StopRelease) })
	p, _ := newTestPlanner(t, svc, 2)

	require.NoError(t, p.StartOptimization(context.Background(), RunOptions{StopWhenFullyScheduled: true}))
	require.Eventually(t, func() bool { return p.Job().State == JobSucceeded }, 5*time.Second, 5*time.Millisecond)

	// The stop request is still blocked, the mapping is already in place.
	s2, _ := p.StopByID("2")
	assert.True(t, s2.Used)
	require.NotNil(t, p.Previous())

	require.NoError(t, p.StartOptimization(context.Background(), RunOptions{}))
	require.Eventually(t, func() bool { return len(svc.Submitted()) == 2 }, 5*time.Second, 5*time.Millisecond)

	second := svc.Submitted()[1]
	assert.Len(t, second.Routes, 1)
	assert.Len(t, second.Constraints.Combinations.OrderVehicle, 1)

	require.Eventually(t, func() bool {
		return p.Job().State == JobSucceeded && len(p.Paths().Previous) == 1
	}, 5*time.Second, 5*time.Millisecond)
	assert.NoError(t, p.LastError())
}

func TestPlannerSetDirectiveValidates(t *testing.T) {
	p, _ := newTestPlanner(t, ptv.NewMockOptimizationService("job-1"), 2)

	err := p.SetDirective(domain.InsertionDirective{Mode: domain.InsertionSoftAfter, AnchorStopID: "1"})
	require.ErrorIs(t, err, domain.ErrAnchorIsDepot)
	assert.Equal(t, domain.InsertionDirective{}, p.Directive())
}

func ids(stops []domain.Stop) []string {
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.ID)
	}
	return out
}
