package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/paulmach/orb"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidFilterSpec is returned by FilterSpec.Validate.
var ErrInvalidFilterSpec = errors.New("invalid filter spec")

// SellerFilter selects which seller categories survive filtering.
type SellerFilter string

const (
	SellerAny         SellerFilter = "any"
	SellerPrivateOnly SellerFilter = "private_only"
	SellerBrokerOnly  SellerFilter = "broker_only"
)

// ParseSellerFilter accepts the canonical names plus the short forms used on
// the command line ("private", "broker"). Empty means any.
func ParseSellerFilter(s string) (SellerFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return SellerAny, nil
	case "private_only", "private":
		return SellerPrivateOnly, nil
	case "broker_only", "broker":
		return SellerBrokerOnly, nil
	}
	return "", fmt.Errorf("%w: unknown seller filter %q", ErrInvalidFilterSpec, s)
}

// FilterSpec holds the query constraints applied to a listing collection.
// Nil optional fields are inactive.
type FilterSpec struct {
	Center           Coordinate   `json:"center"`
	RadiusM          float64      `json:"radius_m"`
	MaxPrice         *int64       `json:"max_price,omitempty"`
	MinRooms         *float64     `json:"min_rooms,omitempty"`
	MaxRooms         *float64     `json:"max_rooms,omitempty"`
	Seller           SellerFilter `json:"seller_filter"`
	RequiredFeatures []string     `json:"required_features,omitempty"`

	// Area, if set, discards listings outside the polygon.
	Area orb.MultiPolygon `json:"-"`
}

// Validate checks the spec for contradictions. The engine itself never calls
// it; malformed specs there simply produce fewer (or no) matches.
func (f FilterSpec) Validate() error {
	if !f.Center.Valid() {
		return fmt.Errorf("%w: center %.6f,%.6f out of range", ErrInvalidFilterSpec, f.Center.Lat, f.Center.Lng)
	}
	if f.RadiusM < 0 {
		return fmt.Errorf("%w: negative radius %.1f", ErrInvalidFilterSpec, f.RadiusM)
	}
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return fmt.Errorf("%w: negative max price %d", ErrInvalidFilterSpec, *f.MaxPrice)
	}
	if f.MinRooms != nil && f.MaxRooms != nil && *f.MinRooms > *f.MaxRooms {
		return fmt.Errorf("%w: min rooms %.1f greater than max rooms %.1f", ErrInvalidFilterSpec, *f.MinRooms, *f.MaxRooms)
	}
	switch f.Seller {
	case "", SellerAny, SellerPrivateOnly, SellerBrokerOnly:
	default:
		return fmt.Errorf("%w: unknown seller filter %q", ErrInvalidFilterSpec, f.Seller)
	}
	return nil
}

// ParseFeatures splits a comma-separated tag list, dropping blanks.
func ParseFeatures(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if t := NormalizeTag(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// NormalizeTag lowercases, trims and strips diacritics so "Parking " and
// "parking" compare equal.
func NormalizeTag(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}), norm.NFC)
	result, _, _ := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	return result
}

// Int64Ptr and Float64Ptr help build optional filter bounds.
func Int64Ptr(v int64) *int64 { return &v }

func Float64Ptr(v float64) *float64 { return &v }
