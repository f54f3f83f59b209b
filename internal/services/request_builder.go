package services

import (
	"delivery-insertion-planner/internal/domain"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"
)

// BuildRequestInput gathers everything one optimization cycle is built from.
type BuildRequestInput struct {
	Catalog   *domain.StopCatalog
	Fleet     domain.FleetConfig
	Previous  *domain.Solution
	Directive domain.InsertionDirective
}

// Build a complete optimization request from the catalog and the previous solution.
//
// Every delivery is tagged with its own stop id and with "new" or "optimized",
// so constraints can address a single stop or every not-yet-placed stop.
// With a previous solution, each route's delivery order becomes a respected
// sequence and assigned stops are pinned to their vehicle. The function is
// pure: identical inputs produce identical requests.
func BuildRequest(in BuildRequestInput) (*domain.OptimizationRequest, error) {
	if in.Catalog == nil {
		return nil, errors.New("build request: catalog must be non-nil")
	}
	if !in.Catalog.HasDepot() {
		return nil, fmt.Errorf("build request: %w", domain.ErrNoDepot)
	}
	if err := in.Fleet.Validate(); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if err := in.Directive.Validate(in.Catalog); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req := &domain.OptimizationRequest{
		Locations: []domain.Location{},
		Orders:    domain.Orders{Deliveries: []domain.Delivery{}},
		Vehicles:  []domain.Vehicle{},
		Depots:    []domain.Depot{},
		Settings:  domain.Settings{Duration: in.Fleet.OptimizationDuration},
		Constraints: domain.Constraints{
			Combinations: domain.Combinations{OrderVehicle: []domain.OrderVehicleCombination{}},
			Tasks: domain.TaskConstraints{
				RespectedSequences: []domain.RespectedSequence{},
				ForbiddenSequences: []domain.ForbiddenSequence{},
			},
		},
		Routes: []domain.RouteIn{},
	}

	// Vehicle ids are numbered across all depots so they stay unique.
	nextVehicle := 1

	for _, stop := range in.Catalog.Stops() {
		req.Locations = append(req.Locations, domain.Location{
			ID:        stop.ID,
			Latitude:  stop.Coordinates.Lat,
			Longitude: stop.Coordinates.Lon,
		})

		if stop.IsDepot {
			req.Depots = append(req.Depots, domain.Depot{ID: stop.ID, LocationID: stop.ID})
			for range in.Fleet.VehiclesPerDepot {
				req.Vehicles = append(req.Vehicles, newVehicle(stop, strconv.Itoa(nextVehicle), in.Fleet))
				nextVehicle++
			}
		} else {
			req.Orders.Deliveries = append(req.Orders.Deliveries, newDelivery(stop, in.Fleet))
		}

		if stop.Assigned() {
			req.Constraints.Combinations.OrderVehicle = append(
				req.Constraints.Combinations.OrderVehicle,
				domain.OrderVehicleCombination{
					Type:            domain.CombinationOrderRequiresVehicle,
					OrderCategory:   stop.ID,
					VehicleCategory: stop.Assignment.VehicleID,
				},
			)
		}
	}

	// Without a previous solution the optimizer is free to place every stop.
	if in.Previous.Empty() {
		return req, nil
	}

	for _, route := range in.Previous.Routes {
		req.Routes = append(req.Routes, routeStructure(route))
		req.Constraints.Tasks.RespectedSequences = append(
			req.Constraints.Tasks.RespectedSequences,
			respectedSequence(route, in.Directive),
		)
	}

	if fs, ok := forbiddenSequence(in.Directive); ok {
		req.Constraints.Tasks.ForbiddenSequences = append(req.Constraints.Tasks.ForbiddenSequences, fs)
	}

	return req, nil
}

func newDelivery(stop domain.Stop, fleet domain.FleetConfig) domain.Delivery {
	state := domain.CategoryNew
	if stop.Assignment != nil {
		state = domain.CategoryOptimized
	}

	return domain.Delivery{
		ID: stop.ID,
		Delivery: domain.DeliveryTask{
			LocationID: stop.ID,
			Duration:   fleet.ServiceDuration,
			Categories: []string{stop.ID, state},
		},
		Properties: domain.DeliveryProperties{
			Categories: []string{stop.ID},
		},
	}
}

func newVehicle(depot domain.Stop, id string, fleet domain.FleetConfig) domain.Vehicle {
	return domain.Vehicle{
		ID: id,
		Costs: domain.VehicleCosts{
			PerHour:      fleet.CostPerHour,
			PerKilometer: fleet.CostPerKilometer,
			Fixed:        fleet.FixedCost,
		},
		Start: domain.VehicleStart{
			LocationID:        depot.ID,
			EarliestStartTime: formatTime(fleet.WindowStart),
		},
		End: domain.VehicleEnd{
			LocationID:    depot.ID,
			LatestEndTime: formatTime(fleet.WindowEnd),
		},
		Routing:    domain.Routing{Profile: fleet.RoutingProfile},
		Categories: []string{id},
	}
}

// routeStructure converts a previous route into the service's input route form.
func routeStructure(route domain.Route) domain.RouteIn {
	out := domain.RouteIn{
		VehicleID: route.VehicleID,
		Tasks:     make([]domain.TaskIn, 0, len(route.Tasks)),
		Breaks:    make([]domain.BreakIn, 0, len(route.Breaks)),
	}
	if !route.Start.IsZero() {
		out.Start = formatTime(route.Start)
	}

	for _, t := range route.Tasks {
		out.Tasks = append(out.Tasks, domain.TaskIn{
			OrderID: t.OrderID,
			Type:    t.Type,
			DepotID: t.DepotID,
		})
	}
	for _, b := range route.Breaks {
		out.Breaks = append(out.Breaks, domain.BreakIn{
			Start:    formatTime(b.Start),
			Duration: b.Duration,
		})
	}

	return out
}

// respectedSequence preserves the relative order of a route's deliveries.
// Hard directives splice the "new" category next to the anchor; a route
// that does not contain the anchor is left as is.
func respectedSequence(route domain.Route, d domain.InsertionDirective) domain.RespectedSequence {
	categories := route.DeliveryCategories()

	if d.Mode.Hard() {
		if i := slices.Index(categories, d.AnchorStopID); i != -1 {
			if d.Mode == domain.InsertionHardImmediatelyAfter {
				i++
			}
			categories = slices.Insert(categories, i, domain.CategoryNew)
		}
	}

	return domain.RespectedSequence{TaskCategories: categories}
}

// forbiddenSequence enforces relative order between the anchor and the new
// stops only. NOT_BEFORE forbids the first category from preceding the second.
func forbiddenSequence(d domain.InsertionDirective) (domain.ForbiddenSequence, bool) {
	switch d.Mode {
	case domain.InsertionSoftBefore:
		return domain.ForbiddenSequence{
			FirstTaskCategory:  d.AnchorStopID,
			Type:               domain.SequenceNotBefore,
			SecondTaskCategory: domain.CategoryNew,
		}, true
	case domain.InsertionSoftAfter:
		return domain.ForbiddenSequence{
			FirstTaskCategory:  domain.CategoryNew,
			Type:               domain.SequenceNotBefore,
			SecondTaskCategory: d.AnchorStopID,
		}, true
	}
	return domain.ForbiddenSequence{}, false
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
