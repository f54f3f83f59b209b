package ptv

import (
	"context"
	"delivery-insertion-planner/internal/domain"
	"delivery-insertion-planner/internal/platform/metrics"
	"delivery-insertion-planner/internal/platform/obs"
	"delivery-insertion-planner/internal/ports"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

const reverseGeocodePath = "/geocoding/v1/locations/by-position"

// Bounds a shared lookup, which no longer follows any single caller's context.
const reverseGeocodeTimeout = 30 * time.Second

var ErrNoAddress = errors.New("no address found")

type reverseGeocodeResponse struct {
	Locations []struct {
		FormattedAddress string `json:"formattedAddress"`
	} `json:"locations"`
	Description string `json:"description"`
}

// ReverseGeocoder resolves positions to display addresses using PTV
// Geocoding.
//
// It coordinates:
//   - Persistent address caching keyed by rounded coordinates
//   - Collapsing concurrent lookups of the same position
//   - External API calls with retry/backoff
//
// The geocoder is safe for concurrent use.
type ReverseGeocoder struct {
	client *Client
	cache  ports.AddressCache
	group  singleflight.Group
}

// NewReverseGeocoder returns a geocoder; cache may be nil.
func NewReverseGeocoder(client *Client, cache ports.AddressCache) *ReverseGeocoder {
	return &ReverseGeocoder{client: client, cache: cache}
}

func (g *ReverseGeocoder) ReverseGeocode(
	ctx context.Context,
	coords domain.Coordinates,
) (_ string, err error) {
	defer obs.Time(ctx, "ptv.reverse_geocode")(&err)

	if !coords.Valid() {
		return "", domain.ErrInvalidCoordinates
	}
	key := coords.Key()

	if g.cache != nil {
		cached, err := g.cache.GetMany(ctx, []string{key})
		if err != nil {
			// A broken cache only costs an API call.
			log.Printf("op=ptv.reverse_geocode key=%s cache_err=%v", key, err)
		} else if addr, ok := cached[key]; ok {
			metrics.GeocodeLookups.WithLabelValues("cache").Inc()
			return addr, nil
		}
	}

	// The lookup is shared by every caller of the same key, so one caller
	// giving up must not cancel it for the others.
	ch := g.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reverseGeocodeTimeout)
		defer cancel()

		addr, err := g.lookup(lctx, coords)
		if err != nil {
			return "", err
		}
		if g.cache != nil {
			if err := g.cache.PutMany(lctx, map[string]string{key: addr}); err != nil {
				log.Printf("op=ptv.reverse_geocode key=%s cache_err=%v", key, err)
			}
		}
		return addr, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return "", fmt.Errorf("reverse geocode %s: %w", key, ctx.Err())
	}

	if res.Err != nil {
		metrics.GeocodeLookups.WithLabelValues("error").Inc()
		return "", fmt.Errorf("reverse geocode %s: %w", key, res.Err)
	}
	if res.Shared {
		metrics.GeocodeLookups.WithLabelValues("shared").Inc()
	} else {
		metrics.GeocodeLookups.WithLabelValues("api").Inc()
	}

	return res.Val.(string), nil
}

func (g *ReverseGeocoder) lookup(ctx context.Context, coords domain.Coordinates) (string, error) {
	path := reverseGeocodePath + "/" +
		strconv.FormatFloat(coords.Lat, 'f', -1, 64) + "/" +
		strconv.FormatFloat(coords.Lon, 'f', -1, 64)

	var decoded reverseGeocodeResponse
	if err := g.client.getJSON(ctx, path, &decoded); err != nil {
		return "", err
	}

	if len(decoded.Locations) == 0 || decoded.Locations[0].FormattedAddress == "" {
		if decoded.Description != "" {
			return "", &ServiceError{Code: http.StatusOK, Description: decoded.Description}
		}
		return "", ErrNoAddress
	}

	return decoded.Locations[0].FormattedAddress, nil
}
