package config

import (
	"delivery-insertion-planner/internal/domain"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fleetFile is the YAML form of domain.FleetConfig. Unset fields keep
// their defaults.
type fleetFile struct {
	VehiclesPerDepot     *int     `yaml:"vehicles_per_depot"`
	CostPerHour          *float64 `yaml:"cost_per_hour"`
	CostPerKilometer     *float64 `yaml:"cost_per_kilometer"`
	FixedCost            *float64 `yaml:"fixed_cost"`
	ServiceDuration      *int     `yaml:"service_duration_seconds"`
	OptimizationDuration *int     `yaml:"optimization_duration_seconds"`
	RoutingProfile       *string  `yaml:"routing_profile"`
	WindowStart          *string  `yaml:"window_start"`
	WindowEnd            *string  `yaml:"window_end"`
	WindowDays           *int     `yaml:"window_days"`
	StopLimit            *int     `yaml:"stop_limit"`
}

// LoadFleet reads a fleet YAML file on top of domain.DefaultFleetConfig(now).
// An empty path returns the defaults.
func LoadFleet(path string, now time.Time) (domain.FleetConfig, error) {
	fleet := domain.DefaultFleetConfig(now)
	if path == "" {
		return fleet, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return domain.FleetConfig{}, fmt.Errorf("load fleet: read %q: %w", path, err)
	}

	return ParseFleet(b, fleet)
}

// ParseFleet applies the YAML document b to base.
func ParseFleet(b []byte, base domain.FleetConfig) (domain.FleetConfig, error) {
	var f fleetFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return domain.FleetConfig{}, fmt.Errorf("load fleet: parse yaml: %w", err)
	}

	fleet := base
	setInt(&fleet.VehiclesPerDepot, f.VehiclesPerDepot)
	setInt(&fleet.ServiceDuration, f.ServiceDuration)
	setInt(&fleet.OptimizationDuration, f.OptimizationDuration)
	setInt(&fleet.StopLimit, f.StopLimit)
	if f.CostPerHour != nil {
		fleet.CostPerHour = *f.CostPerHour
	}
	if f.CostPerKilometer != nil {
		fleet.CostPerKilometer = *f.CostPerKilometer
	}
	if f.FixedCost != nil {
		fleet.FixedCost = *f.FixedCost
	}
	if f.RoutingProfile != nil {
		fleet.RoutingProfile = *f.RoutingProfile
	}

	if f.WindowStart != nil {
		t, err := time.Parse(time.RFC3339, *f.WindowStart)
		if err != nil {
			return domain.FleetConfig{}, fmt.Errorf("load fleet: window_start: %w", err)
		}
		span := fleet.WindowEnd.Sub(fleet.WindowStart)
		fleet.WindowStart = t
		fleet.WindowEnd = t.Add(span)
	}
	if f.WindowDays != nil {
		fleet.WindowEnd = fleet.WindowStart.AddDate(0, 0, *f.WindowDays)
	}
	if f.WindowEnd != nil {
		t, err := time.Parse(time.RFC3339, *f.WindowEnd)
		if err != nil {
			return domain.FleetConfig{}, fmt.Errorf("load fleet: window_end: %w", err)
		}
		fleet.WindowEnd = t
	}

	if err := fleet.Validate(); err != nil {
		return domain.FleetConfig{}, fmt.Errorf("load fleet: %w", err)
	}
	return fleet, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
