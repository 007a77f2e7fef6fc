package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/rendis/rentscout/internal/model"
)

// EarthRadiusMeters is the mean Earth radius used by Haversine.
const EarthRadiusMeters = 6_371_000.0

// Haversine returns the great-circle distance in meters between a and b.
// The haversine term is clamped to [0,1] so antipodal or near-antipodal
// inputs never produce NaN.
func Haversine(a, b model.Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180.0
	dLng := (b.Lng - a.Lng) * math.Pi / 180.0
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180.0)*math.Cos(b.Lat*math.Pi/180.0)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	h = math.Min(math.Max(h, 0), 1)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// BoundAround returns the bounding box covering radiusM meters around center.
func BoundAround(center model.Coordinate, radiusM float64) orb.Bound {
	return orbgeo.NewBoundAroundPoint(center.Point(), radiusM)
}

// Destination returns the point reached by travelling distanceM meters from
// origin along bearing (degrees clockwise from north).
func Destination(origin model.Coordinate, bearing, distanceM float64) model.Coordinate {
	return model.CoordinateFromPoint(orbgeo.PointAtBearingAndDistance(origin.Point(), bearing, distanceM))
}
