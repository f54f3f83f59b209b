package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
)

// DefaultStopLimit caps the number of stops an operator may place.
const DefaultStopLimit = 20

// StopCatalog is the in-memory set of stops and their assignment state.
// Stops are never deleted or re-indexed, so ids stay valid across cycles.
// A StopCatalog is not safe for concurrent use; the owner serializes access.
type StopCatalog struct {
	limit int
	stops []*Stop
	byID  map[string]*Stop
}

func NewStopCatalog(limit int) *StopCatalog {
	if limit <= 0 {
		limit = DefaultStopLimit
	}
	return &StopCatalog{
		limit: limit,
		byID:  make(map[string]*Stop),
	}
}

// CheckCapacity reports ErrStopLimitExceeded when no further stop fits.
func (c *StopCatalog) CheckCapacity() error {
	if len(c.stops) >= c.limit {
		return fmt.Errorf("add stop: cannot add more than %d stops: %w", c.limit, ErrStopLimitExceeded)
	}
	return nil
}

// AddStop appends a stop with the next sequential id.
// The first stop of an empty catalog becomes the depot.
func (c *StopCatalog) AddStop(coords Coordinates, address string) (Stop, error) {
	if err := c.CheckCapacity(); err != nil {
		return Stop{}, err
	}
	if !coords.Valid() {
		return Stop{}, fmt.Errorf("add stop: (%f, %f): %w", coords.Lat, coords.Lon, ErrInvalidCoordinates)
	}

	index := len(c.stops)
	stop := &Stop{
		ID:          strconv.Itoa(index + 1),
		Coordinates: coords,
		Address:     address,
		Color:       ColorFromIndex(index),
		IsDepot:     index == 0,
	}
	c.stops = append(c.stops, stop)
	c.byID[stop.ID] = stop

	return *stop, nil
}

// Get returns a copy of the stop with the given id.
func (c *StopCatalog) Get(id string) (Stop, bool) {
	s, ok := c.byID[id]
	if !ok {
		return Stop{}, false
	}
	return copyStop(s), true
}

// Len returns the number of stops in the catalog.
func (c *StopCatalog) Len() int { return len(c.stops) }

// Stops returns copies of all stops in insertion order.
func (c *StopCatalog) Stops() []Stop {
	out := make([]Stop, 0, len(c.stops))
	for _, s := range c.stops {
		out = append(out, copyStop(s))
	}
	return out
}

// HasDepot reports whether at least one stop is flagged as depot.
func (c *StopCatalog) HasDepot() bool {
	return slices.ContainsFunc(c.stops, func(s *Stop) bool { return s.IsDepot })
}

// ApplySolution records the assignment of every stop referenced by the
// solution's tasks. Unreferenced stops keep their state. Either every task
// is applied or, if any task references an unknown stop, none is.
func (c *StopCatalog) ApplySolution(sol *Solution) error {
	if sol == nil {
		return nil
	}

	for _, r := range sol.Routes {
		for _, t := range r.Tasks {
			if t.StopID() == "" {
				return fmt.Errorf("apply solution: vehicle %s: task without stop id: %w", r.VehicleID, ErrUnknownStop)
			}
			for _, id := range []string{t.OrderID, t.DepotID} {
				if id == "" {
					continue
				}
				if _, ok := c.byID[id]; !ok {
					return fmt.Errorf("apply solution: vehicle %s: stop %q: %w", r.VehicleID, id, ErrUnknownStop)
				}
			}
		}
	}

	for _, r := range sol.Routes {
		for _, t := range r.Tasks {
			stop := c.byID[t.StopID()]
			stop.Used = true

			// Depots are touched but never arrived at in the delivery sense.
			if t.Kind() == TaskKindDepotVisit {
				continue
			}
			stop.Assignment = &Assignment{
				VehicleID:   r.VehicleID,
				DepotID:     r.StartLocationID,
				ArrivalTime: t.ArrivalTime,
			}
		}
	}

	return nil
}

// Sorted returns the stops in display order: depots first, then grouped by
// assigned vehicle (unassigned last), then by arrival time. Ties keep
// insertion order.
func (c *StopCatalog) Sorted() []Stop {
	out := c.Stops()
	slices.SortStableFunc(out, compareForDisplay)
	return out
}

// AnchorCandidates returns the routed delivery stops an insertion may anchor on.
func (c *StopCatalog) AnchorCandidates() []Stop {
	out := make([]Stop, 0, len(c.stops))
	for _, s := range c.Sorted() {
		if !s.IsDepot && s.Used {
			out = append(out, s)
		}
	}
	return out
}

func compareForDisplay(a, b Stop) int {
	if a.IsDepot != b.IsDepot {
		if a.IsDepot {
			return -1
		}
		return 1
	}

	av, bv := vehicleOf(a), vehicleOf(b)
	if av != bv {
		if av == "" {
			return 1
		}
		if bv == "" {
			return -1
		}
		return compareIDs(av, bv)
	}

	if a.Assignment != nil && b.Assignment != nil {
		return a.Assignment.ArrivalTime.Compare(b.Assignment.ArrivalTime)
	}
	return 0
}

func vehicleOf(s Stop) string {
	if s.Assignment == nil {
		return ""
	}
	return s.Assignment.VehicleID
}

// compareIDs orders numeric ids numerically and falls back to string order.
func compareIDs(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return cmp.Compare(ai, bi)
	}
	return cmp.Compare(a, b)
}

func copyStop(s *Stop) Stop {
	cp := *s
	if s.Assignment != nil {
		a := *s.Assignment
		cp.Assignment = &a
	}
	return cp
}
