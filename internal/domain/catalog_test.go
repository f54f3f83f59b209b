package domain

import (
	"errors"
	"testing"
	"time"
)

func newTestCatalog(t *testing.T, n int) *StopCatalog {
	t.Helper()

	c := NewStopCatalog(0)
	for i := 0; i < n; i++ {
		if _, err := c.AddStop(Coordinates{Lat: 49 + float64(i)/100, Lon: 8.4}, "addr"); err != nil {
			t.Fatalf("add stop %d: %v", i, err)
		}
	}
	return c
}

func TestStopCatalogAddStop(t *testing.T) {
	c := NewStopCatalog(0)

	depot, err := c.AddStop(Coordinates{Lat: 49, Lon: 8.4}, "Depot street 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if depot.ID != "1" || !depot.IsDepot || depot.Used {
		t.Fatalf("depot = %+v, want id 1, depot, unused", depot)
	}

	order, err := c.AddStop(Coordinates{Lat: 49.01, Lon: 8.41}, "Order street 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "2" || order.IsDepot || order.Used || order.Assignment != nil {
		t.Fatalf("order = %+v, want id 2, not depot, unassigned", order)
	}
	if order.Color != ColorFromIndex(1) {
		t.Fatalf("color = %q, want %q", order.Color, ColorFromIndex(1))
	}
}

func TestStopCatalogLimit(t *testing.T) {
	c := NewStopCatalog(2)
	for i := 0; i < 2; i++ {
		if _, err := c.AddStop(Coordinates{Lat: 1, Lon: 1}, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	_, err := c.AddStop(Coordinates{Lat: 1, Lon: 1}, "")
	if !errors.Is(err, ErrStopLimitExceeded) {
		t.Fatalf("err = %v, want ErrStopLimitExceeded", err)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
}

func TestStopCatalogRejectsInvalidCoordinates(t *testing.T) {
	c := NewStopCatalog(0)
	if _, err := c.AddStop(Coordinates{Lat: 91, Lon: 0}, ""); !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("err = %v, want ErrInvalidCoordinates", err)
	}
}

func TestColorFromIndexIsDeterministic(t *testing.T) {
	if ColorFromIndex(3) != ColorFromIndex(3) {
		t.Fatal("color must be deterministic")
	}
	if ColorFromIndex(0) == ColorFromIndex(1) {
		t.Fatalf("adjacent indices share colour %q", ColorFromIndex(0))
	}
}

func TestStopCatalogApplySolution(t *testing.T) {
	c := newTestCatalog(t, 4)
	arrival := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	sol := &Solution{Routes: []Route{{
		VehicleID:       "1",
		StartLocationID: "1",
		EndLocationID:   "1",
		Tasks: []Task{
			{OrderID: "2", DepotID: "1", Type: "LOADING"},
			{OrderID: "2", Type: "DELIVERY", ArrivalTime: arrival},
			{OrderID: "3", Type: "DELIVERY", ArrivalTime: arrival.Add(10 * time.Minute)},
		},
	}}}

	if err := c.ApplySolution(sol); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, id := range []string{"2", "3"} {
		s, _ := c.Get(id)
		if !s.Used || s.Assignment == nil {
			t.Fatalf("stop %s = %+v, want used with assignment", id, s)
		}
		if s.Assignment.VehicleID != "1" || s.Assignment.DepotID != "1" {
			t.Fatalf("stop %s assignment = %+v, want vehicle 1 depot 1", id, *s.Assignment)
		}
	}

	depot, _ := c.Get("1")
	if !depot.Used || depot.Assignment != nil {
		t.Fatalf("depot = %+v, want used without assignment", depot)
	}

	untouched, _ := c.Get("4")
	if untouched.Used || untouched.Assignment != nil {
		t.Fatalf("stop 4 = %+v, want untouched", untouched)
	}

	s3, _ := c.Get("3")
	if !s3.Assignment.ArrivalTime.Equal(arrival.Add(10 * time.Minute)) {
		t.Fatalf("arrival = %v, want %v", s3.Assignment.ArrivalTime, arrival.Add(10*time.Minute))
	}
}

func TestStopCatalogApplySolutionUnknownStopIsAtomic(t *testing.T) {
	c := newTestCatalog(t, 3)

	sol := &Solution{Routes: []Route{{
		VehicleID:       "1",
		StartLocationID: "1",
		Tasks: []Task{
			{OrderID: "2", Type: "DELIVERY"},
			{OrderID: "99", Type: "DELIVERY"},
		},
	}}}

	err := c.ApplySolution(sol)
	if !errors.Is(err, ErrUnknownStop) {
		t.Fatalf("err = %v, want ErrUnknownStop", err)
	}

	for _, s := range c.Stops() {
		if s.Used || s.Assignment != nil {
			t.Fatalf("stop %s mutated: %+v", s.ID, s)
		}
	}
}

func TestStopCatalogSortedAndAnchorCandidates(t *testing.T) {
	c := newTestCatalog(t, 5)
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	sol := &Solution{Routes: []Route{
		{
			VehicleID:       "2",
			StartLocationID: "1",
			Tasks:           []Task{{OrderID: "3", ArrivalTime: base}},
		},
		{
			VehicleID:       "1",
			StartLocationID: "1",
			Tasks: []Task{
				{OrderID: "4", ArrivalTime: base.Add(time.Hour)},
				{OrderID: "2", ArrivalTime: base.Add(2 * time.Hour)},
			},
		},
	}}
	if err := c.ApplySolution(sol); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := ids(c.Sorted())
	want := []string{"1", "4", "2", "3", "5"}
	if !equalStrings(got, want) {
		t.Fatalf("sorted = %v, want %v", got, want)
	}

	got = ids(c.AnchorCandidates())
	want = []string{"4", "2", "3"}
	if !equalStrings(got, want) {
		t.Fatalf("anchor candidates = %v, want %v", got, want)
	}
}

func ids(stops []Stop) []string {
	out := make([]string, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.ID)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
