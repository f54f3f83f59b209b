package domain

import (
	"errors"
	"time"
)

// FleetConfig holds the fleet sizing and cost parameters of a request.
// It is read-only input to the request builder.
type FleetConfig struct {
	VehiclesPerDepot     int
	CostPerHour          float64
	CostPerKilometer     float64
	FixedCost            float64
	ServiceDuration      int // seconds per delivery
	OptimizationDuration int // seconds the optimizer may run
	RoutingProfile       string
	WindowStart          time.Time
	WindowEnd            time.Time
	StopLimit            int
}

// DefaultFleetConfig returns the stock fleet: one vehicle per depot operating
// from the start of the day of now until three days later.
func DefaultFleetConfig(now time.Time) FleetConfig {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return FleetConfig{
		VehiclesPerDepot:     1,
		CostPerHour:          2,
		CostPerKilometer:     20,
		FixedCost:            0,
		ServiceDuration:      300,
		OptimizationDuration: 30,
		RoutingProfile:       "EUR_CAR",
		WindowStart:          start,
		WindowEnd:            start.AddDate(0, 0, 3),
		StopLimit:            DefaultStopLimit,
	}
}

// Validate checks the invariants the request builder relies on.
func (f FleetConfig) Validate() error {
	if f.VehiclesPerDepot < 1 {
		return errors.New("fleet config: vehicles per depot must be at least 1")
	}
	if f.ServiceDuration < 0 || f.OptimizationDuration < 0 {
		return errors.New("fleet config: durations must be non-negative")
	}
	if !f.WindowEnd.After(f.WindowStart) {
		return errors.New("fleet config: operating window end must be after start")
	}
	if f.RoutingProfile == "" {
		return errors.New("fleet config: routing profile must be non-empty")
	}
	return nil
}
