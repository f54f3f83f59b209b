package domain

import (
	"fmt"
	"math"
	"time"
)

// Assignment records where a prior optimization placed a delivery stop.
type Assignment struct {
	VehicleID   string    `json:"vehicle_id"`
	DepotID     string    `json:"depot_id"`
	ArrivalTime time.Time `json:"arrival_time"`
}

// Represents a single order or depot placed by the operator.
// The ID is stable across optimization cycles and doubles as the
// category that binds the stop, its delivery and any constraint together.
type Stop struct {
	ID          string      `json:"id"`
	Coordinates Coordinates `json:"coordinates"`
	Address     string      `json:"address"`
	Color       string      `json:"color"`
	IsDepot     bool        `json:"is_depot"`
	Assignment  *Assignment `json:"assignment,omitempty"`
	Used        bool        `json:"used"`
}

// Assigned reports whether a prior optimization routed this stop.
func (s *Stop) Assigned() bool {
	return s.Assignment != nil && s.Assignment.VehicleID != "" && s.Assignment.DepotID != ""
}

// ColorFromIndex returns a deterministic display colour for the n-th stop.
// Successive indices are spread by the golden ratio; each channel is floored
// at 55 to stay readable on a white marker label.
func ColorFromIndex(index int) string {
	phi := (1 + math.Sqrt(5)) / 2
	n := 1 + float64(index)*phi

	r := max(int(math.Floor(math.Mod(n*255, 255))), 55)
	g := max(int(math.Floor(math.Mod(n*359, 255))), 55)
	b := max(int(math.Floor(math.Mod(n*231, 255))), 55)

	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}
