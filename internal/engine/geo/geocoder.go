package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rendis/rentscout/internal/model"
)

// ErrNotFound means an address could not be resolved. Network failures and
// "no such address" both surface as ErrNotFound at the cache boundary.
var ErrNotFound = errors.New("address not found")

// Geocoder resolves a free-text address to a coordinate.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (model.Coordinate, error)
}

const DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim resolves addresses with the OSM Nominatim search API.
type Nominatim struct {
	client  *Client
	baseURL string
}

func NewNominatim(client *Client, baseURL string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &Nominatim{client: client, baseURL: baseURL}
}

func (n *Nominatim) Resolve(ctx context.Context, address string) (model.Coordinate, error) {
	q := strings.TrimSpace(address)
	if q == "" {
		return model.Coordinate{}, fmt.Errorf("%w: empty address", ErrNotFound)
	}

	u := n.baseURL + "?" + url.Values{
		"q":      {q},
		"format": {"json"},
		"limit":  {"1"},
	}.Encode()

	body, err := n.client.Get(ctx, u)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("geocoding request failed: %w", err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return model.Coordinate{}, fmt.Errorf("decoding geocoding response: %w", err)
	}
	if len(results) == 0 {
		return model.Coordinate{}, fmt.Errorf("%w: %q", ErrNotFound, q)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("parsing latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("parsing longitude %q: %w", results[0].Lon, err)
	}

	c := model.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return model.Coordinate{}, fmt.Errorf("geocoder returned out-of-range coordinate %.6f,%.6f", lat, lng)
	}
	return c, nil
}

// Static resolves addresses from a fixed table. Lookups ignore case and
// repeated whitespace.
type Static struct {
	table map[string]model.Coordinate
}

// KnownAddresses seeds the static geocoder used in offline mode.
var KnownAddresses = map[string]model.Coordinate{
	"Dizengoff 100, Tel Aviv":     {Lat: 32.0809, Lng: 34.7806},
	"Rothschild Blvd 1, Tel Aviv": {Lat: 32.0631, Lng: 34.7702},
	"Ibn Gabirol 30, Tel Aviv":    {Lat: 32.0795, Lng: 34.7815},
	"Allenby 50, Tel Aviv":        {Lat: 32.0676, Lng: 34.7704},
	"Herzl 10, Haifa":             {Lat: 32.8157, Lng: 34.9946},
	"Jaffa Road 30, Jerusalem":    {Lat: 31.7826, Lng: 35.2198},
	"Ben Yehuda 20, Tel Aviv":     {Lat: 32.0799, Lng: 34.7687},
	"Florentin 10, Tel Aviv":      {Lat: 32.0566, Lng: 34.7687},
	"Weizmann 14, Kfar Saba":      {Lat: 32.1780, Lng: 34.9076},
	"Sokolov 40, Ramat HaSharon":  {Lat: 32.1461, Lng: 34.8394},
}

func NewStatic(entries map[string]model.Coordinate) *Static {
	s := &Static{table: make(map[string]model.Coordinate, len(entries))}
	for addr, c := range entries {
		s.table[CacheKey(addr)] = c
	}
	return s
}

func (s *Static) Resolve(_ context.Context, address string) (model.Coordinate, error) {
	c, ok := s.table[CacheKey(address)]
	if !ok {
		return model.Coordinate{}, fmt.Errorf("%w: %q", ErrNotFound, address)
	}
	return c, nil
}
