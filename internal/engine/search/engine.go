// Package search filters, ranks and paginates candidate listings, and runs
// the geocode → source → engine pipeline for a query.
package search

import (
	"cmp"
	"slices"

	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/model"
)

// Filter returns the listings that pass every active predicate of spec,
// in source order, each paired with its distance from spec.Center.
// The input slice is not modified.
func Filter(listings []model.Listing, spec model.FilterSpec) []model.Match {
	var matches []model.Match
	for _, l := range listings {
		d := geo.Haversine(spec.Center, l.Position())
		if !(d <= spec.RadiusM) { // NaN radius admits nothing
			continue
		}
		if !matchesAttributes(l, spec) {
			continue
		}
		matches = append(matches, model.Match{Listing: l, DistanceM: d})
	}
	return matches
}

func matchesAttributes(l model.Listing, spec model.FilterSpec) bool {
	if spec.MaxPrice != nil && l.Price > *spec.MaxPrice {
		return false
	}
	if spec.MinRooms != nil && l.Rooms < *spec.MinRooms {
		return false
	}
	if spec.MaxRooms != nil && l.Rooms > *spec.MaxRooms {
		return false
	}
	if !sellerAllowed(l.Seller, spec.Seller) {
		return false
	}
	for _, tag := range spec.RequiredFeatures {
		if !l.HasFeature(tag) {
			return false
		}
	}
	if len(spec.Area) > 0 && !geo.Contains(spec.Area, l.Position()) {
		return false
	}
	return true
}

func sellerAllowed(seller model.SellerType, mode model.SellerFilter) bool {
	switch mode {
	case "", model.SellerAny:
		return true
	case model.SellerPrivateOnly:
		return seller == model.SellerPrivate
	case model.SellerBrokerOnly:
		return seller == model.SellerBroker
	}
	// Unrecognized modes admit nothing.
	return false
}

// Rank orders matches by distance, then price, in place. The sort is stable:
// matches equal on both keys keep their source order.
func Rank(matches []model.Match) {
	slices.SortStableFunc(matches, func(a, b model.Match) int {
		if c := cmp.Compare(a.DistanceM, b.DistanceM); c != 0 {
			return c
		}
		return cmp.Compare(a.Listing.Price, b.Listing.Price)
	})
}

// Paginate returns page index of the ranked sequence. Pages past the end, a
// negative index or a non-positive size yield an empty page, never an error.
func Paginate(ranked []model.Match, index, size int) model.Page {
	total := len(ranked)
	page := model.Page{
		Index: index,
		Size:  size,
		Total: total,
		Items: []model.Match{},
	}
	if size <= 0 {
		return page
	}
	page.TotalPages = total / size
	if total%size != 0 {
		page.TotalPages++
	}
	// Bounding index by TotalPages keeps index*size from overflowing.
	if index < 0 || index >= page.TotalPages {
		return page
	}

	start := index * size
	end := min(start+size, total)
	page.Items = ranked[start:end]
	return page
}

// Apply runs filter, rank and paginate in one call and returns the full
// ranked sequence alongside the requested page.
func Apply(listings []model.Listing, spec model.FilterSpec, index, size int) ([]model.Match, model.Page) {
	ranked := Filter(listings, spec)
	Rank(ranked)
	return ranked, Paginate(ranked, index, size)
}
