package services

import (
	"delivery-insertion-planner/internal/domain"
	"errors"
	"fmt"
	"time"
)

// MappedSolution is what one successful optimization cycle yields.
type MappedSolution struct {
	// Normalized routes, the "previous solution" of the next cycle.
	// Nil when the result carried no routes.
	Solution *domain.Solution
	// One traversal per vehicle for the renderer.
	Paths []domain.Path
}

// Map a terminal success result onto the catalog.
//
// Every stop referenced by the result must exist in the catalog; otherwise
// the catalog is left untouched and ErrUnknownStop is returned.
func MapSolution(catalog *domain.StopCatalog, result *domain.OptimizationResult) (*MappedSolution, error) {
	if catalog == nil {
		return nil, errors.New("map solution: catalog must be non-nil")
	}
	if result == nil {
		return nil, errors.New("map solution: result must be non-nil")
	}
	if result.Routes == nil {
		return &MappedSolution{Paths: []domain.Path{}}, nil
	}

	sol, err := NormalizeResult(result)
	if err != nil {
		return nil, fmt.Errorf("map solution: %w", err)
	}

	paths := make([]domain.Path, 0, len(sol.Routes))
	for _, route := range sol.Routes {
		p, err := traversalPath(catalog, route)
		if err != nil {
			return nil, fmt.Errorf("map solution: %w", err)
		}
		paths = append(paths, p)
	}

	// Paths are validated above; ApplySolution validates tasks before mutating.
	if err := catalog.ApplySolution(sol); err != nil {
		return nil, fmt.Errorf("map solution: %w", err)
	}

	return &MappedSolution{Solution: sol, Paths: paths}, nil
}

// NormalizeResult extracts the routes of a result in the form the next
// request resubmits: vehicle, start time, ordered tasks and breaks.
func NormalizeResult(result *domain.OptimizationResult) (*domain.Solution, error) {
	sol := &domain.Solution{Routes: make([]domain.Route, 0, len(result.Routes))}

	for _, rr := range result.Routes {
		start, err := parseTime(rr.Start.Departure)
		if err != nil {
			return nil, fmt.Errorf("normalize result: vehicle %s start: %w", rr.VehicleID, err)
		}

		route := domain.Route{
			VehicleID:       rr.VehicleID,
			Start:           start,
			StartLocationID: rr.Start.LocationID,
			EndLocationID:   rr.End.LocationID,
			Tasks:           []domain.Task{},
			Breaks:          []domain.Break{},
		}

		for _, stop := range rr.Stops {
			arrival, err := parseTime(stop.Arrival)
			if err != nil {
				return nil, fmt.Errorf("normalize result: vehicle %s arrival: %w", rr.VehicleID, err)
			}

			for _, appt := range stop.Appointments {
				for _, t := range appt.Tasks {
					route.Tasks = append(route.Tasks, domain.Task{
						OrderID:     t.OrderID,
						DepotID:     t.DepotID,
						Type:        t.Type,
						ArrivalTime: arrival,
					})
				}
				for _, b := range appt.Breaks {
					bs, err := parseTime(b.Start)
					if err != nil {
						return nil, fmt.Errorf("normalize result: vehicle %s break: %w", rr.VehicleID, err)
					}
					route.Breaks = append(route.Breaks, domain.Break{Start: bs, Duration: b.Duration})
				}
			}
		}

		sol.Routes = append(sol.Routes, route)
	}

	return sol, nil
}

// traversalPath concatenates the route start, each delivery in visiting
// order and the route end.
func traversalPath(catalog *domain.StopCatalog, route domain.Route) (domain.Path, error) {
	path := domain.Path{
		VehicleID: route.VehicleID,
		Points:    make([]domain.Coordinates, 0, len(route.Tasks)+2),
	}

	ids := make([]string, 0, len(route.Tasks)+2)
	ids = append(ids, route.StartLocationID)
	ids = append(ids, route.DeliveryCategories()...)
	ids = append(ids, route.EndLocationID)

	for _, id := range ids {
		stop, ok := catalog.Get(id)
		if !ok {
			return domain.Path{}, fmt.Errorf("vehicle %s: stop %q: %w", route.VehicleID, id, domain.ErrUnknownStop)
		}
		path.Points = append(path.Points, stop.Coordinates)
	}

	return path, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
