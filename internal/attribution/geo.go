package attribution

import (
	"context"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

// Location is the coarse geography of a client address.
type Location struct {
	Country  string
	Region   string
	City     string
	Timezone string
}

// UnknownLocation is used whenever a lookup is unavailable or fails.
var UnknownLocation = Location{
	Country:  domain.UnknownGeo,
	Region:   domain.UnknownGeo,
	City:     domain.UnknownGeo,
	Timezone: domain.UnknownGeo,
}

// GeoLocator resolves an IP address to a Location. Implementations backed
// by a network service must honour ctx cancellation.
type GeoLocator interface {
	Locate(ctx context.Context, ip string) (Location, error)
}

// UnknownLocator answers every lookup with UnknownLocation.
type UnknownLocator struct{}

// Locate implements GeoLocator.
func (UnknownLocator) Locate(context.Context, string) (Location, error) {
	return UnknownLocation, nil
}
