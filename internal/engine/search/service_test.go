package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/engine/listings"
	"github.com/rendis/rentscout/internal/model"
)

type stubGeocoder struct {
	coord model.Coordinate
	err   error
	calls int
}

func (g *stubGeocoder) Resolve(_ context.Context, _ string) (model.Coordinate, error) {
	g.calls++
	return g.coord, g.err
}

type stubSource struct {
	listings []model.Listing
	err      error
	center   model.Coordinate
	radius   float64
}

func (s *stubSource) Search(_ context.Context, center model.Coordinate, radiusM float64) ([]model.Listing, error) {
	s.center, s.radius = center, radiusM
	return s.listings, s.err
}

type memRecorder struct {
	session  Session
	listings []model.Listing
	saveErr  error
}

func (r *memRecorder) SaveSearch(s Session) error {
	r.session = s
	return r.saveErr
}

func (r *memRecorder) InsertBatch(l []model.Listing) (int, error) {
	r.listings = append(r.listings, l...)
	return len(l), nil
}

func TestServiceRunByAddress(t *testing.T) {
	gc := &stubGeocoder{coord: dizengoff}
	svc := NewService(gc, listings.NewMockSource(60, 1.3), zap.NewNop())

	res, err := svc.Run(context.Background(), Query{
		Address:  "Dizengoff 100, Tel Aviv",
		Filter:   model.FilterSpec{RadiusM: 1000},
		PageSize: 5,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Center != dizengoff || res.Filter.Center != dizengoff {
		t.Errorf("center = %v / %v, want %v", res.Center, res.Filter.Center, dizengoff)
	}
	if res.Candidates != 60 {
		t.Errorf("Candidates = %d, want 60", res.Candidates)
	}
	if len(res.Page.Items) > 5 || res.Page.Total != len(res.Ranked) {
		t.Errorf("page = %d items, total %d, ranked %d", len(res.Page.Items), res.Page.Total, len(res.Ranked))
	}
	if res.Empty() != (len(res.Ranked) == 0) {
		t.Error("Empty() disagrees with Ranked")
	}
	assertRanked(t, res.Ranked)
}

func TestServiceRunByCenterSkipsGeocoder(t *testing.T) {
	gc := &stubGeocoder{err: errors.New("must not be called")}
	src := &stubSource{listings: []model.Listing{listingAt("a", dizengoff, 5000)}}
	svc := NewService(gc, src, nil)

	center := dizengoff
	res, err := svc.Run(context.Background(), Query{Center: &center, Filter: model.FilterSpec{RadiusM: 250}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gc.calls != 0 {
		t.Errorf("geocoder called %d times", gc.calls)
	}
	if src.center != dizengoff || src.radius != 250 {
		t.Errorf("source got %v r=%f", src.center, src.radius)
	}
	if res.Page.Size != DefaultPageSize {
		t.Errorf("page size = %d, want default %d", res.Page.Size, DefaultPageSize)
	}
	if len(res.Ranked) != 1 {
		t.Errorf("ranked = %d, want 1", len(res.Ranked))
	}
}

func TestServiceRunNotFound(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		geocErr error
	}{
		{"no address", Query{Address: "   "}, nil},
		{"geocoder not found", Query{Address: "Atlantis"}, geo.ErrNotFound},
		{"geocoder network error", Query{Address: "Atlantis"}, errors.New("timeout")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubSource{}
			svc := NewService(&stubGeocoder{err: tt.geocErr}, src, nil)

			_, err := svc.Run(context.Background(), tt.query)
			if !errors.Is(err, geo.ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
			if src.radius != 0 || src.center != (model.Coordinate{}) {
				t.Error("source must not be queried after a failed geocode")
			}
		})
	}
}

func TestServiceRunSourceError(t *testing.T) {
	src := &stubSource{err: errors.New("upstream down")}
	svc := NewService(&stubGeocoder{coord: dizengoff}, src, nil)

	_, err := svc.Run(context.Background(), Query{Address: "x", Filter: model.FilterSpec{RadiusM: 100}})
	if err == nil || errors.Is(err, geo.ErrNotFound) {
		t.Fatalf("err = %v, want a source error", err)
	}
}

func TestServiceRunEmptyIsNotError(t *testing.T) {
	far := geo.Destination(dizengoff, 0, 5000)
	src := &stubSource{listings: []model.Listing{listingAt("far", far, 5000)}}
	svc := NewService(&stubGeocoder{coord: dizengoff}, src, nil)

	res, err := svc.Run(context.Background(), Query{Address: "x", Filter: model.FilterSpec{RadiusM: 100}, Page: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Empty() || len(res.Page.Items) != 0 {
		t.Errorf("expected empty result, got %+v", res.Page)
	}
}

func TestServiceRunAndRecord(t *testing.T) {
	in := []model.Listing{
		listingAt("a", dizengoff, 5000),
		listingAt("b", geo.Destination(dizengoff, 0, 5000), 5000),
	}
	rec := &memRecorder{}
	svc := NewService(&stubGeocoder{coord: dizengoff}, &stubSource{listings: in}, nil)

	res, err := svc.RunAndRecord(context.Background(), Query{Address: "Dizengoff 100", Filter: model.FilterSpec{RadiusM: 100}}, rec)
	if err != nil {
		t.Fatalf("RunAndRecord: %v", err)
	}
	if rec.session.Address != "Dizengoff 100" || rec.session.Center != dizengoff {
		t.Errorf("session = %+v", rec.session)
	}
	if rec.session.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if len(rec.listings) != 2 {
		t.Errorf("recorded %d candidates, want all 2", len(rec.listings))
	}
	if len(res.Ranked) != 1 {
		t.Errorf("ranked = %d, want 1", len(res.Ranked))
	}
}

func TestServiceRunAndRecordSaveError(t *testing.T) {
	rec := &memRecorder{saveErr: errors.New("disk full")}
	svc := NewService(&stubGeocoder{coord: dizengoff}, &stubSource{}, nil)

	if _, err := svc.RunAndRecord(context.Background(), Query{Address: "x"}, rec); err == nil {
		t.Fatal("expected error")
	}
}

func TestServiceWithSource(t *testing.T) {
	orig := &stubSource{}
	replay := &stubSource{listings: []model.Listing{listingAt("r", dizengoff, 1)}}
	svc := NewService(&stubGeocoder{coord: dizengoff}, orig, nil)

	res, err := svc.WithSource(replay).Run(context.Background(), Query{Address: "x", Filter: model.FilterSpec{RadiusM: 10}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Candidates != 1 {
		t.Errorf("Candidates = %d, want 1", res.Candidates)
	}
	if orig.radius != 0 {
		t.Error("original source must be untouched")
	}
}
