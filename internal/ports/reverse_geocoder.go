package ports

import (
	"context"
	"delivery-insertion-planner/internal/domain"
)

// Contract for resolving a map position to a display address.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, coords domain.Coordinates) (string, error)
}

// Persistent lookup of previously resolved addresses keyed by Coordinates.Key.
type AddressCache interface {
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	PutMany(ctx context.Context, addresses map[string]string) error
}
