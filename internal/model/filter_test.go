package model

import (
	"errors"
	"slices"
	"testing"
)

func TestParseSellerFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    SellerFilter
		wantErr bool
	}{
		{"", SellerAny, false},
		{"any", SellerAny, false},
		{"ALL", SellerAny, false},
		{"private", SellerPrivateOnly, false},
		{" private_only ", SellerPrivateOnly, false},
		{"broker", SellerBrokerOnly, false},
		{"broker_only", SellerBrokerOnly, false},
		{"landlord", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSellerFilter(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidFilterSpec) {
				t.Errorf("ParseSellerFilter(%q) err = %v, want ErrInvalidFilterSpec", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseSellerFilter(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestFilterSpecValidate(t *testing.T) {
	center := Coordinate{Lat: 32.0809, Lng: 34.7806}
	tests := []struct {
		name    string
		spec    FilterSpec
		wantErr bool
	}{
		{"zero radius", FilterSpec{Center: center}, false},
		{"full spec", FilterSpec{Center: center, RadiusM: 1000, MaxPrice: Int64Ptr(8000), MinRooms: Float64Ptr(2), MaxRooms: Float64Ptr(3), Seller: SellerPrivateOnly}, false},
		{"equal rooms bounds", FilterSpec{Center: center, MinRooms: Float64Ptr(2), MaxRooms: Float64Ptr(2)}, false},
		{"negative radius", FilterSpec{Center: center, RadiusM: -1}, true},
		{"negative price", FilterSpec{Center: center, MaxPrice: Int64Ptr(-5)}, true},
		{"min rooms above max", FilterSpec{Center: center, MinRooms: Float64Ptr(4), MaxRooms: Float64Ptr(2)}, true},
		{"latitude out of range", FilterSpec{Center: Coordinate{Lat: 91}}, true},
		{"longitude out of range", FilterSpec{Center: Coordinate{Lng: -181}}, true},
		{"unknown seller", FilterSpec{Center: center, Seller: "owner"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFilterSpec) {
				t.Errorf("err %v does not wrap ErrInvalidFilterSpec", err)
			}
		})
	}
}

func TestParseFeatures(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"parking", []string{"parking"}},
		{" Parking , ,Elevator,", []string{"parking", "elevator"}},
		{"Mamád", []string{"mamad"}},
	}
	for _, tt := range tests {
		if got := ParseFeatures(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ParseFeatures(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestListingHasFeature(t *testing.T) {
	l := Listing{Features: []string{"Parking", "air_conditioning"}}
	for tag, want := range map[string]bool{
		"parking":          true,
		" PARKING ":        true,
		"air_conditioning": true,
		"elevator":         false,
		"":                 false,
	} {
		if got := l.HasFeature(tag); got != want {
			t.Errorf("HasFeature(%q) = %v, want %v", tag, got, want)
		}
	}
}

func TestPageFlags(t *testing.T) {
	tests := []struct {
		name       string
		page       Page
		prev, next bool
	}{
		{"single page", Page{Index: 0, TotalPages: 1}, false, false},
		{"first of three", Page{Index: 0, TotalPages: 3}, false, true},
		{"middle", Page{Index: 1, TotalPages: 3}, true, true},
		{"last", Page{Index: 2, TotalPages: 3}, true, false},
		{"no results", Page{Index: 0, TotalPages: 0}, false, false},
		{"negative index", Page{Index: -1, TotalPages: 3}, false, false},
	}
	for _, tt := range tests {
		if tt.page.HasPrev() != tt.prev || tt.page.HasNext() != tt.next {
			t.Errorf("%s: HasPrev=%v HasNext=%v, want %v %v", tt.name, tt.page.HasPrev(), tt.page.HasNext(), tt.prev, tt.next)
		}
	}
}

func TestCoordinatePointRoundTrip(t *testing.T) {
	c := Coordinate{Lat: 32.0809, Lng: 34.7806}
	p := c.Point()
	if p[0] != c.Lng || p[1] != c.Lat {
		t.Fatalf("Point() = %v, want [lng lat]", p)
	}
	if got := CoordinateFromPoint(p); got != c {
		t.Errorf("CoordinateFromPoint = %v, want %v", got, c)
	}
}
