package attribution

import (
	"context"
	"time"
)

// DefaultGeoTimeout bounds a single geo lookup.
const DefaultGeoTimeout = 200 * time.Millisecond

// Signals are the request inputs attribution works from.
type Signals struct {
	SourceHint string
	Referrer   string
	UserAgent  string
	IPAddress  string
}

// Attribution is every attribute derived for one click.
type Attribution struct {
	Source    string
	Device    Device
	UTM       UTM
	Location  Location
	HourOfDay int
	DayOfWeek int
}

// Attributor runs the derivations for a click.
type Attributor struct {
	// geo is nil when every lookup would answer UnknownLocation.
	geo        GeoLocator
	geoTimeout time.Duration
}

// NewAttributor returns an Attributor. A nil geo or UnknownLocator skips the
// lookup entirely and a non-positive timeout uses DefaultGeoTimeout.
func NewAttributor(geo GeoLocator, geoTimeout time.Duration) *Attributor {
	if _, ok := geo.(UnknownLocator); ok {
		geo = nil
	}
	if geoTimeout <= 0 {
		geoTimeout = DefaultGeoTimeout
	}
	return &Attributor{geo: geo, geoTimeout: geoTimeout}
}

// Attribute derives the attributes of a click accepted at time at.
// A failed or slow geo lookup degrades to UnknownLocation.
func (a *Attributor) Attribute(ctx context.Context, s Signals, at time.Time) Attribution {
	hour, weekday := TimeBuckets(at)
	return Attribution{
		Source:    ClassifySource(s.SourceHint, s.Referrer),
		Device:    ParseUserAgent(s.UserAgent),
		UTM:       ExtractUTM(s.Referrer),
		Location:  a.locate(ctx, s.IPAddress),
		HourOfDay: hour,
		DayOfWeek: weekday,
	}
}

func (a *Attributor) locate(ctx context.Context, ip string) Location {
	if ip == "" || a.geo == nil {
		return UnknownLocation
	}

	geoCtx, cancel := context.WithTimeout(ctx, a.geoTimeout)
	defer cancel()

	type result struct {
		loc Location
		err error
	}
	done := make(chan result, 1)
	go func() {
		loc, err := a.geo.Locate(geoCtx, ip)
		done <- result{loc: loc, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return UnknownLocation
		}
		return r.loc
	case <-geoCtx.Done():
		return UnknownLocation
	}
}
