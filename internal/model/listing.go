package model

import (
	"slices"

	"github.com/paulmach/orb"
)

// SellerType classifies who publishes a listing.
type SellerType string

const (
	SellerPrivate SellerType = "private"
	SellerBroker  SellerType = "broker"
	SellerUnknown SellerType = "unknown"
)

// Coordinate is a (latitude, longitude) pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate lies in [-90,90] x [-180,180].
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Point converts to an orb.Point, which is [lng, lat].
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// CoordinateFromPoint converts an orb.Point back to a Coordinate.
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lng: p.Lon()}
}

// Listing represents a candidate rental unit. Listings are treated as
// immutable once a source has produced them.
type Listing struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Address  string     `json:"address"`
	Price    int64      `json:"price"` // smallest currency unit
	Rooms    float64    `json:"rooms"`
	Seller   SellerType `json:"seller_type"`
	Features []string   `json:"features"`
	Lat      float64    `json:"lat"`
	Lng      float64    `json:"lng"`
	URL      string     `json:"url"`
}

// Position returns the listing's coordinate.
func (l Listing) Position() Coordinate {
	return Coordinate{Lat: l.Lat, Lng: l.Lng}
}

// HasFeature reports whether the listing carries the tag, compared after
// normalization.
func (l Listing) HasFeature(tag string) bool {
	want := NormalizeTag(tag)
	return slices.ContainsFunc(l.Features, func(f string) bool {
		return NormalizeTag(f) == want
	})
}
