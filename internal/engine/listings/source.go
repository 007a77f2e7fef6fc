// Package listings provides the collaborators that produce candidate
// listings for a search: a deterministic mock generator and a replay source
// backed by a saved session.
package listings

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/rendis/rentscout/internal/model"
)

// Source returns candidate listings near center. Results may include
// listings outside the radius; the engine re-filters.
type Source interface {
	Search(ctx context.Context, center model.Coordinate, radiusM float64) ([]model.Listing, error)
}

// DefaultCount is how many listings the mock source generates per search.
const DefaultCount = 60

// DefaultSpreadFactor widens the generation disk beyond the search radius so
// the engine has something to discard.
const DefaultSpreadFactor = 1.3

// minSpreadM keeps a zero-radius search from collapsing every listing onto
// the center.
const minSpreadM = 50.0

// MockSource generates reproducible listings per (center, radius).
type MockSource struct {
	Count        int
	SpreadFactor float64
}

func NewMockSource(count int, spreadFactor float64) *MockSource {
	if count <= 0 {
		count = DefaultCount
	}
	if spreadFactor <= 0 {
		spreadFactor = DefaultSpreadFactor
	}
	return &MockSource{Count: count, SpreadFactor: spreadFactor}
}

func (s *MockSource) Search(ctx context.Context, center model.Coordinate, radiusM float64) ([]model.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	spread := math.Max(radiusM*s.SpreadFactor, minSpreadM)
	g := NewGenerator(center, spread)
	return g.Generate(SeedFor(center, radiusM), s.Count), nil
}

// SeedFor derives a stable seed from the search center and radius.
func SeedFor(center model.Coordinate, radiusM float64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, v := range []float64{center.Lat, center.Lng, radiusM} {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Store is the slice of the session store a StoreSource reads from.
type Store interface {
	Listings() ([]model.Listing, error)
}

// StoreSource replays the candidates saved in a session, in stored order.
type StoreSource struct {
	store Store
}

func NewStoreSource(store Store) *StoreSource {
	return &StoreSource{store: store}
}

func (s *StoreSource) Search(ctx context.Context, _ model.Coordinate, _ float64) ([]model.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Listings()
}
