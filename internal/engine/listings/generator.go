package listings

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/google/uuid"

	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/model"
)

// listingNamespace scopes the name-based UUIDs of generated listings.
var listingNamespace = uuid.MustParse("6f1c4e2a-8d3b-5a7e-9c01-2b4d6f8a0c3e")

var streets = []string{
	"Dizengoff", "Ben Yehuda", "Ibn Gabirol", "Rothschild", "Allenby",
	"King George", "Frishman", "Gordon", "Arlozorov", "Bograshov",
	"Sheinkin", "Nordau", "Basel", "Jabotinsky", "Hayarkon",
}

var roomChoices = []float64{1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5}

// featureOdds gives each tag its independent probability of appearing.
var featureOdds = []struct {
	tag  string
	odds float64
}{
	{"parking", 0.4},
	{"elevator", 0.5},
	{"balcony", 0.55},
	{"mamad", 0.3},
	{"air_conditioning", 0.7},
	{"furnished", 0.35},
	{"pets_allowed", 0.25},
	{"renovated", 0.3},
}

const (
	minPrice  = 3500
	maxPrice  = 14000
	priceStep = 50
)

// Generator produces synthetic listings scattered around a center. The
// output depends only on the seed and count passed to Generate.
type Generator struct {
	center  model.Coordinate
	spreadM float64
}

func NewGenerator(center model.Coordinate, spreadM float64) *Generator {
	return &Generator{center: center, spreadM: spreadM}
}

// Generate returns count listings derived from seed.
func (g *Generator) Generate(seed uint64, count int) []model.Listing {
	if count <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([]model.Listing, 0, count)
	for i := range count {
		out = append(out, g.one(rng, seed, i))
	}
	return out
}

func (g *Generator) one(rng *rand.Rand, seed uint64, i int) model.Listing {
	// Uniform over the disk: sqrt keeps density constant with distance.
	dist := g.spreadM * math.Sqrt(rng.Float64())
	bearing := rng.Float64() * 360
	pos := geo.Destination(g.center, bearing, dist)

	rooms := roomChoices[rng.IntN(len(roomChoices))]
	base := minPrice + int64(rng.IntN((maxPrice-minPrice)/priceStep+1))*priceStep
	// Larger units skew pricier, still capped to the range.
	price := min(base+int64(rooms*300)/priceStep*priceStep, maxPrice)

	var seller model.SellerType
	switch r := rng.Float64(); {
	case r < 0.45:
		seller = model.SellerPrivate
	case r < 0.9:
		seller = model.SellerBroker
	default:
		seller = model.SellerUnknown
	}

	var features []string
	for _, f := range featureOdds {
		if rng.Float64() < f.odds {
			features = append(features, f.tag)
		}
	}

	street := streets[rng.IntN(len(streets))]
	number := 1 + rng.IntN(200)
	id := uuid.NewSHA1(listingNamespace, []byte(fmt.Sprintf("%d/%d", seed, i))).String()

	return model.Listing{
		ID:       id,
		Title:    fmt.Sprintf("%s-room apartment on %s", strconv.FormatFloat(rooms, 'f', -1, 64), street),
		Address:  fmt.Sprintf("%s %d, Tel Aviv", street, number),
		Price:    price,
		Rooms:    rooms,
		Seller:   seller,
		Features: features,
		Lat:      pos.Lat,
		Lng:      pos.Lng,
		URL:      "https://listings.example/rent/" + id,
	}
}
