package domain

import "fmt"

// Immutable geographic coordinates (latitude, longitude).
type Coordinates struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Return coordinates as [lat, lon], the order the map renderer expects.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lat, c.Lon} }

// Key returns a cache key rounded to 5 decimal places (~1m precision).
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

// Valid reports whether the coordinates are inside WGS84 bounds.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
