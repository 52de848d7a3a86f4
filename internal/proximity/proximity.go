// Package proximity maps an event's location evidence onto a supplier,
// producing the distance multiplier used in scoring. Resolution is
// tiered: precise city coordinates beat country matches, country
// matches beat continent matches, and anything farther contributes
// nothing.
package proximity

import (
	"fmt"

	"github.com/riskwatch/riskwatch/internal/classify"
	"github.com/riskwatch/riskwatch/internal/geo"
)

// Tiers holds the multiplier for each proximity band.
type Tiers struct {
	City          float64 // event located within CityRadiusKm of the supplier
	CountrySignal float64 // same country and high signal strength
	Country       float64 // same country
	Continent     float64 // same continent
}

// Supplier is the location evidence known for a supplier. Lat/Lon are
// nil when the supplier has not been geocoded; City may still resolve
// through the built-in table.
type Supplier struct {
	City    string
	Country string
	Lat     *float64
	Lon     *float64
}

// Event is the location evidence carried by a stored event.
type Event struct {
	Text    string // title and description, scanned for city names
	Country string // detected country, may be empty
	Signal  classify.Signal
}

// Resolver computes distance multipliers with configured tiers.
type Resolver struct {
	tiers    Tiers
	radiusKm float64
}

func NewResolver(tiers Tiers, radiusKm float64) *Resolver {
	return &Resolver{tiers: tiers, radiusKm: radiusKm}
}

// Resolve returns the distance multiplier for an event against a
// supplier, plus a human-readable label explaining the tier. A zero
// multiplier means the event is geographically irrelevant and must be
// excluded from scoring.
func (r *Resolver) Resolve(s Supplier, e Event) (float64, string) {
	supplierCoord, supplierLocated := r.locateSupplier(s)

	// City tier requires coordinates on both sides.
	if supplierLocated {
		if eventCoord, ok := geo.ExtractCityCoords(e.Text); ok {
			dist := geo.HaversineKm(supplierCoord.Lat, supplierCoord.Lon, eventCoord.Lat, eventCoord.Lon)
			if dist <= r.radiusKm {
				return r.tiers.City, fmt.Sprintf("Within %.0f km", dist)
			}
			// A located event beyond the radius still counts at
			// country level when countries line up.
		}
	}

	if e.Country == "" {
		return 0, "No location evidence"
	}

	if geo.SameCountry(s.Country, e.Country) {
		if e.Signal == classify.SignalHigh {
			return r.tiers.CountrySignal, fmt.Sprintf("Same country, high signal (%s)", e.Country)
		}
		return r.tiers.Country, fmt.Sprintf("Same country (%s)", e.Country)
	}

	sc := geo.Continent(s.Country)
	ec := geo.Continent(e.Country)
	if sc != "" && sc == ec {
		return r.tiers.Continent, fmt.Sprintf("Same continent (%s)", e.Country)
	}

	return 0, fmt.Sprintf("Different continent (%s)", e.Country)
}

// locateSupplier returns the supplier's coordinates, falling back to
// the built-in city table when no geocoded position is stored.
func (r *Resolver) locateSupplier(s Supplier) (geo.Coord, bool) {
	if s.Lat != nil && s.Lon != nil {
		return geo.Coord{Lat: *s.Lat, Lon: *s.Lon}, true
	}
	if s.City != "" {
		if c, ok := geo.CityCoords(s.City); ok {
			return c, true
		}
	}
	return geo.Coord{}, false
}
