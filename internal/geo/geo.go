// Package geo provides coordinates, great-circle distance, and the device
// location source used by capture operations.
package geo

import (
	"context"
	"math"

	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

// EarthRadiusKm is the mean Earth radius used for haversine distances.
const EarthRadiusKm = 6371.0

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are real numbers.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon)
}

// Haversine returns the great-circle distance between two coordinates in
// kilometers.
func Haversine(a, b Coordinate) float64 {
	phi1 := toRad(a.Lat)
	phi2 := toRad(b.Lat)
	dPhi := toRad(b.Lat - a.Lat)
	dLambda := toRad(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Locator resolves the device's current position. Implementations wrap the
// platform geolocation facility; captures fail with GEOLOCATION_UNAVAILABLE
// when no coordinates can be produced — there is no synthetic fallback.
type Locator interface {
	Current(ctx context.Context) (Coordinate, error)
}

// FixedLocator always reports the same coordinate. Used by tests and by the
// CLI, where the operator supplies a position explicitly.
type FixedLocator struct {
	Coord Coordinate
}

// Current implements Locator.
func (f FixedLocator) Current(context.Context) (Coordinate, error) {
	return f.Coord, nil
}

// UnavailableLocator always fails; it models a device with location services
// denied or absent.
type UnavailableLocator struct{}

// Current implements Locator.
func (UnavailableLocator) Current(context.Context) (Coordinate, error) {
	return Coordinate{}, errors.New(errors.ErrCodeGeolocationUnavailable, "no location source available")
}
