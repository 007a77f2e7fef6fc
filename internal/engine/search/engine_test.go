package search

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/engine/listings"
	"github.com/rendis/rentscout/internal/model"
)

var dizengoff = model.Coordinate{Lat: 32.0809, Lng: 34.7806}

func listingAt(id string, c model.Coordinate, price int64) model.Listing {
	return model.Listing{
		ID:       id,
		Price:    price,
		Rooms:    2,
		Seller:   model.SellerPrivate,
		Features: []string{"parking"},
		Lat:      c.Lat,
		Lng:      c.Lng,
	}
}

func generated(t *testing.T, radiusM float64) []model.Listing {
	t.Helper()
	out, err := listings.NewMockSource(60, 1.3).Search(context.Background(), dizengoff, radiusM)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestFilterPredicates(t *testing.T) {
	near := geo.Destination(dizengoff, 90, 100)
	base := listingAt("base", near, 6000)

	tests := []struct {
		name   string
		mutate func(*model.Listing)
		spec   model.FilterSpec
		want   bool
	}{
		{"no constraints", nil, model.FilterSpec{}, true},
		{"price at max", nil, model.FilterSpec{MaxPrice: model.Int64Ptr(6000)}, true},
		{"price over max", nil, model.FilterSpec{MaxPrice: model.Int64Ptr(5999)}, false},
		{"rooms at min", nil, model.FilterSpec{MinRooms: model.Float64Ptr(2)}, true},
		{"rooms under min", nil, model.FilterSpec{MinRooms: model.Float64Ptr(2.5)}, false},
		{"rooms over max", nil, model.FilterSpec{MaxRooms: model.Float64Ptr(1.5)}, false},
		{"private only", nil, model.FilterSpec{Seller: model.SellerPrivateOnly}, true},
		{"broker only", nil, model.FilterSpec{Seller: model.SellerBrokerOnly}, false},
		{"unknown seller excluded from private", func(l *model.Listing) { l.Seller = model.SellerUnknown }, model.FilterSpec{Seller: model.SellerPrivateOnly}, false},
		{"unknown seller passes any", func(l *model.Listing) { l.Seller = model.SellerUnknown }, model.FilterSpec{Seller: model.SellerAny}, true},
		{"unrecognized mode admits nothing", nil, model.FilterSpec{Seller: "landlords"}, false},
		{"required feature present", nil, model.FilterSpec{RequiredFeatures: []string{"parking"}}, true},
		{"required feature normalized", nil, model.FilterSpec{RequiredFeatures: []string{" Parking "}}, true},
		{"required feature missing", nil, model.FilterSpec{RequiredFeatures: []string{"parking", "elevator"}}, false},
		{"no features at all", func(l *model.Listing) { l.Features = nil }, model.FilterSpec{RequiredFeatures: []string{"parking"}}, false},
		{"outside radius", nil, model.FilterSpec{RadiusM: 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base
			l.Features = slices.Clone(base.Features)
			if tt.mutate != nil {
				tt.mutate(&l)
			}
			spec := tt.spec
			spec.Center = dizengoff
			if spec.RadiusM == 0 {
				spec.RadiusM = 1000
			}
			got := len(Filter([]model.Listing{l}, spec)) == 1
			if got != tt.want {
				t.Errorf("passes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterIdempotent(t *testing.T) {
	in := generated(t, 1000)
	spec := model.FilterSpec{
		Center:   dizengoff,
		RadiusM:  1000,
		MaxPrice: model.Int64Ptr(9000),
		Seller:   model.SellerAny,
	}

	first := Filter(in, spec)
	second := Filter(in, spec)
	if !slices.Equal(ids(first), ids(second)) {
		t.Error("filtering twice gave different results")
	}

	// Filtering the survivors again removes nothing.
	again := make([]model.Listing, len(first))
	for i, m := range first {
		again[i] = m.Listing
	}
	if got := Filter(again, spec); len(got) != len(first) {
		t.Errorf("re-filter kept %d of %d", len(got), len(first))
	}
}

func TestFilterRadiusBoundary(t *testing.T) {
	l := listingAt("edge", geo.Destination(dizengoff, 45, 750), 5000)
	d := geo.Haversine(dizengoff, l.Position())

	if got := Filter([]model.Listing{l}, model.FilterSpec{Center: dizengoff, RadiusM: d}); len(got) != 1 {
		t.Error("listing at exactly the radius must pass")
	}
	below := math.Nextafter(d, 0)
	if got := Filter([]model.Listing{l}, model.FilterSpec{Center: dizengoff, RadiusM: below}); len(got) != 0 {
		t.Error("listing just beyond the radius must fail")
	}
	if got := Filter([]model.Listing{l}, model.FilterSpec{Center: dizengoff, RadiusM: math.NaN()}); len(got) != 0 {
		t.Error("NaN radius must admit nothing")
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	in := generated(t, 1000)
	before := slices.Clone(in)
	Filter(in, model.FilterSpec{Center: dizengoff, RadiusM: 500})
	for i := range in {
		if in[i].ID != before[i].ID {
			t.Fatalf("input reordered at %d", i)
		}
	}
}

func TestRankOrdersByDistanceThenPrice(t *testing.T) {
	p1 := geo.Destination(dizengoff, 0, 100)
	p2 := geo.Destination(dizengoff, 0, 300)
	in := []model.Listing{
		listingAt("far", p2, 4000),
		listingAt("near-expensive", p1, 9000),
		listingAt("near-cheap", p1, 5000),
		listingAt("near-cheap-2", p1, 5000),
	}
	matches := Filter(in, model.FilterSpec{Center: dizengoff, RadiusM: 1000})
	Rank(matches)

	want := []string{"near-cheap", "near-cheap-2", "near-expensive", "far"}
	if got := ids(matches); !slices.Equal(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRankProperty(t *testing.T) {
	matches := Filter(generated(t, 2000), model.FilterSpec{Center: dizengoff, RadiusM: 2000})
	Rank(matches)
	assertRanked(t, matches)
}

func TestPaginateConcatenation(t *testing.T) {
	ranked := Filter(generated(t, 1000), model.FilterSpec{Center: dizengoff, RadiusM: 1000})
	Rank(ranked)
	if len(ranked) == 0 {
		t.Fatal("expected matches from the generator")
	}

	for _, size := range []int{1, 3, 7, 10, len(ranked), len(ranked) + 5} {
		first := Paginate(ranked, 0, size)
		wantPages := (len(ranked) + size - 1) / size
		if first.TotalPages != wantPages {
			t.Errorf("size %d: TotalPages = %d, want %d", size, first.TotalPages, wantPages)
		}

		var all []model.Match
		for i := range first.TotalPages {
			p := Paginate(ranked, i, size)
			if len(p.Items) == 0 || len(p.Items) > size {
				t.Fatalf("size %d page %d has %d items", size, i, len(p.Items))
			}
			all = append(all, p.Items...)
		}
		if !slices.Equal(ids(all), ids(ranked)) {
			t.Errorf("size %d: concatenated pages differ from the ranked sequence", size)
		}
	}
}

func TestPaginateOutOfRange(t *testing.T) {
	ranked := make([]model.Match, 5)
	tests := []struct {
		name        string
		index, size int
	}{
		{"beyond last", 2, 3},
		{"far beyond", 100, 3},
		{"negative index", -1, 3},
		{"zero size", 0, 0},
		{"negative size", 0, -2},
		{"overflowing index", math.MaxInt/2 + 1, 2},
		{"huge index", 1 << 62, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(ranked, tt.index, tt.size)
			if p.Items == nil || len(p.Items) != 0 {
				t.Errorf("Items = %v, want empty non-nil", p.Items)
			}
			if p.Total != 5 {
				t.Errorf("Total = %d, want 5", p.Total)
			}
			if p.HasNext() {
				t.Error("HasNext on an out-of-range page")
			}
		})
	}
}

func TestPaginateFlags(t *testing.T) {
	ranked := make([]model.Match, 7)
	tests := []struct {
		index             int
		wantPrev, wantNxt bool
		wantLen           int
	}{
		{0, false, true, 3},
		{1, true, true, 3},
		{2, true, false, 1},
	}
	for _, tt := range tests {
		p := Paginate(ranked, tt.index, 3)
		if p.HasPrev() != tt.wantPrev || p.HasNext() != tt.wantNxt || len(p.Items) != tt.wantLen {
			t.Errorf("page %d: prev=%v next=%v len=%d", tt.index, p.HasPrev(), p.HasNext(), len(p.Items))
		}
	}
}

func TestApplyDizengoffScenario(t *testing.T) {
	in := generated(t, 1000)
	if len(in) != 60 {
		t.Fatalf("generated %d listings, want 60", len(in))
	}
	spec := model.FilterSpec{
		Center:           dizengoff,
		RadiusM:          1000,
		MaxPrice:         model.Int64Ptr(8000),
		MinRooms:         model.Float64Ptr(2.0),
		Seller:           model.SellerPrivateOnly,
		RequiredFeatures: []string{"parking"},
	}

	ranked, page := Apply(in, spec, 0, 10)
	if len(ranked) > 60 {
		t.Fatalf("got %d results from 60 listings", len(ranked))
	}
	if page.Total != len(ranked) {
		t.Errorf("page.Total = %d, want %d", page.Total, len(ranked))
	}
	for _, m := range ranked {
		l := m.Listing
		switch {
		case l.Price > 8000:
			t.Errorf("%s: price %d > 8000", l.ID, l.Price)
		case l.Rooms < 2:
			t.Errorf("%s: rooms %.1f < 2", l.ID, l.Rooms)
		case l.Seller != model.SellerPrivate:
			t.Errorf("%s: seller %s", l.ID, l.Seller)
		case !slices.Contains(l.Features, "parking"):
			t.Errorf("%s: no parking in %v", l.ID, l.Features)
		case m.DistanceM > 1000:
			t.Errorf("%s: distance %.1f > 1000", l.ID, m.DistanceM)
		}
	}
	assertRanked(t, ranked)
}

func TestApplyZeroRadius(t *testing.T) {
	in := []model.Listing{
		listingAt("1m", geo.Destination(dizengoff, 0, 1), 5000),
		listingAt("5m", geo.Destination(dizengoff, 90, 5), 4000),
		listingAt("20m", geo.Destination(dizengoff, 225, 20), 3000),
	}

	ranked, page := Apply(in, model.FilterSpec{Center: dizengoff, RadiusM: 0}, 0, 10)
	if len(ranked) != 0 {
		t.Errorf("got %d matches, want 0", len(ranked))
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("page = %+v, want empty", page)
	}
}

func assertRanked(t *testing.T, matches []model.Match) {
	t.Helper()
	for i := 1; i < len(matches); i++ {
		a, b := matches[i-1], matches[i]
		if a.DistanceM > b.DistanceM {
			t.Fatalf("position %d: distance %.2f before %.2f", i, a.DistanceM, b.DistanceM)
		}
		if a.DistanceM == b.DistanceM && a.Listing.Price > b.Listing.Price {
			t.Fatalf("position %d: equal distance, price %d before %d", i, a.Listing.Price, b.Listing.Price)
		}
	}
}

func ids(matches []model.Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Listing.ID
	}
	return out
}
