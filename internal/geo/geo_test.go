package geo

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timowlmtn/living-harmonix/pkg/errors"
)

func TestHaversine(t *testing.T) {
	boston := Coordinate{Lat: 42.3601, Lon: -71.0589}
	nyc := Coordinate{Lat: 40.7128, Lon: -74.0060}

	// Boston–NYC is roughly 306 km great-circle.
	d := Haversine(boston, nyc)
	assert.InDelta(t, 306, d, 5)

	assert.Zero(t, Haversine(boston, boston))

	// Symmetric.
	assert.InDelta(t, Haversine(nyc, boston), d, 1e-9)
}

func TestHaversineAntipodal(t *testing.T) {
	a := Coordinate{Lat: 0, Lon: 0}
	b := Coordinate{Lat: 0, Lon: 180}
	assert.InDelta(t, math.Pi*EarthRadiusKm, Haversine(a, b), 0.01)
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, Coordinate{Lat: 1, Lon: 2}.Valid())
	assert.False(t, Coordinate{Lat: math.NaN(), Lon: 2}.Valid())
	assert.False(t, Coordinate{Lat: 1, Lon: math.NaN()}.Valid())
}

func TestFixedLocator(t *testing.T) {
	loc := FixedLocator{Coord: Coordinate{Lat: 42.3601, Lon: -71.0589}}
	got, err := loc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loc.Coord, got)
}

func TestUnavailableLocator(t *testing.T) {
	_, err := UnavailableLocator{}.Current(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGeolocationUnavailable, errors.CodeOf(err))
}
