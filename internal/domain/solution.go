package domain

import "time"

type TaskKind string

const (
	TaskKindDelivery   TaskKind = "delivery"
	TaskKindDepotVisit TaskKind = "depot-visit"
)

// A single visit within a vehicle's route.
// Depot visits carry a DepotID; the OrderID of a depot visit names the
// order being loaded there and is not a delivery in its own right.
type Task struct {
	OrderID     string
	DepotID     string
	Type        string
	ArrivalTime time.Time
}

// Kind classifies the task by whether it touches a depot.
func (t Task) Kind() TaskKind {
	if t.DepotID != "" {
		return TaskKindDepotVisit
	}
	return TaskKindDelivery
}

// StopID returns the catalog stop this task is performed at.
func (t Task) StopID() string {
	if t.DepotID != "" {
		return t.DepotID
	}
	return t.OrderID
}

type Break struct {
	Start    time.Time
	Duration int
}

// Represents the planned work of one vehicle in a Solution.
type Route struct {
	VehicleID       string
	Start           time.Time
	StartLocationID string
	EndLocationID   string
	Tasks           []Task
	Breaks          []Break
}

// DeliveryCategories returns the categories of the non-depot tasks in visiting order.
func (r Route) DeliveryCategories() []string {
	out := make([]string, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		if t.Kind() == TaskKindDelivery {
			out = append(out, t.OrderID)
		}
	}
	return out
}

// The normalized result of one optimization cycle.
// It is both the input to stop assignment and the "previous routes" input
// of the next request.
type Solution struct {
	Routes []Route
}

// Empty reports whether there is no previous work to preserve.
func (s *Solution) Empty() bool {
	return s == nil || len(s.Routes) == 0
}

// Path is the ordered traversal of one vehicle handed to the renderer.
type Path struct {
	VehicleID string        `json:"vehicle_id"`
	Points    []Coordinates `json:"points"`
}
