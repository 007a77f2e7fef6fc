package geo

import (
	"math"
	"testing"

	"github.com/rendis/rentscout/internal/model"
)

var samplePoints = []model.Coordinate{
	{Lat: 32.0809, Lng: 34.7806},
	{Lat: 32.0631, Lng: 34.7702},
	{Lat: 0, Lng: 0},
	{Lat: -33.8688, Lng: 151.2093},
	{Lat: 90, Lng: 0},
	{Lat: -90, Lng: 180},
	{Lat: 51.5074, Lng: -0.1278},
	{Lat: 0, Lng: 180},
}

func TestHaversineIdentity(t *testing.T) {
	for _, p := range samplePoints {
		if d := Haversine(p, p); d != 0 {
			t.Errorf("Haversine(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestHaversineSymmetricAndNonNegative(t *testing.T) {
	for _, a := range samplePoints {
		for _, b := range samplePoints {
			ab, ba := Haversine(a, b), Haversine(b, a)
			if math.IsNaN(ab) || ab < 0 {
				t.Fatalf("Haversine(%v, %v) = %f, want non-negative", a, b, ab)
			}
			if math.Abs(ab-ba) > 1e-6 {
				t.Errorf("Haversine not symmetric for %v, %v: %f vs %f", a, b, ab, ba)
			}
		}
	}
}

func TestHaversineKnownDistances(t *testing.T) {
	tests := []struct {
		name string
		a, b model.Coordinate
		want float64
		tol  float64
	}{
		{"antipodal", model.Coordinate{Lat: 0, Lng: 0}, model.Coordinate{Lat: 0, Lng: 180}, math.Pi * EarthRadiusMeters, 1},
		{"one degree of latitude", model.Coordinate{Lat: 0, Lng: 0}, model.Coordinate{Lat: 1, Lng: 0}, 111_195, 5},
		{"dizengoff to rothschild", model.Coordinate{Lat: 32.0809, Lng: 34.7806}, model.Coordinate{Lat: 32.0631, Lng: 34.7702}, 2_210, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Haversine = %f, want %f ± %f", got, tt.want, tt.tol)
			}
		})
	}
}

// Destination walks on orb's WGS84-equatorial sphere, so Haversine reads
// the leg back about 0.1% short.
func TestDestinationRoundTrip(t *testing.T) {
	origin := model.Coordinate{Lat: 32.0809, Lng: 34.7806}
	for _, bearing := range []float64{0, 45, 90, 180, 270} {
		p := Destination(origin, bearing, 1000)
		if d := Haversine(origin, p); math.Abs(d-1000) > 5 {
			t.Errorf("bearing %.0f: distance = %f, want ~1000", bearing, d)
		}
	}
}

func TestBoundAroundContainsCircle(t *testing.T) {
	center := model.Coordinate{Lat: 32.0809, Lng: 34.7806}
	b := BoundAround(center, 500)
	for _, bearing := range []float64{0, 90, 180, 270} {
		p := Destination(center, bearing, 490)
		if !b.Contains(p.Point()) {
			t.Errorf("bound %v does not contain %v (bearing %.0f)", b, p, bearing)
		}
	}
}
