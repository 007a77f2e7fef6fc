package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/engine/listings"
	"github.com/rendis/rentscout/internal/metrics"
	"github.com/rendis/rentscout/internal/model"
)

// DefaultPageSize is used when a query leaves the page size unset.
const DefaultPageSize = 10

// Query is one search request. Either Address or Center must be set; a
// non-nil Center skips geocoding. Filter.Center is overwritten with the
// resolved center.
type Query struct {
	Address  string
	Center   *model.Coordinate
	Filter   model.FilterSpec
	Page     int
	PageSize int
}

// Result is the outcome of a search.
type Result struct {
	Address    string
	Center     model.Coordinate
	Filter     model.FilterSpec
	Candidates int
	Ranked     []model.Match
	Page       model.Page
}

// Empty reports whether filtering removed every candidate. Callers should
// suggest relaxing the filters.
func (r *Result) Empty() bool {
	return r.Page.Total == 0
}

// Session is what a Recorder persists about a search.
type Session struct {
	Address   string
	Center    model.Coordinate
	Filter    model.FilterSpec
	CreatedAt time.Time
}

// Recorder persists the candidates of a search.
type Recorder interface {
	SaveSearch(s Session) error
	InsertBatch(l []model.Listing) (int, error)
}

// Service runs the geocode → source → filter/rank/paginate pipeline.
type Service struct {
	geocoder geo.Geocoder
	source   listings.Source
	logger   *zap.Logger
}

func NewService(geocoder geo.Geocoder, source listings.Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{geocoder: geocoder, source: source, logger: logger}
}

// WithLogger returns a copy of the service that logs to l. Sessions use it
// to send their lines to the session log file.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	cp := *s
	if l != nil {
		cp.logger = l
	}
	return &cp
}

// WithSource returns a copy of the service reading candidates from src.
func (s *Service) WithSource(src listings.Source) *Service {
	cp := *s
	cp.source = src
	return &cp
}

// Run executes q. Geocoding failures return an error wrapping
// geo.ErrNotFound; an empty result or an out-of-range page is not an error.
func (s *Service) Run(ctx context.Context, q Query) (*Result, error) {
	return s.run(ctx, q, nil)
}

// RunAndRecord is Run, additionally saving the session and its candidates.
func (s *Service) RunAndRecord(ctx context.Context, q Query, rec Recorder) (*Result, error) {
	return s.run(ctx, q, rec)
}

func (s *Service) run(ctx context.Context, q Query, rec Recorder) (*Result, error) {
	start := time.Now()

	center, err := s.resolveCenter(ctx, q)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
		return nil, err
	}

	spec := q.Filter
	spec.Center = center

	candidates, err := s.source.Search(ctx, center, spec.RadiusM)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("listing source: %w", err)
	}

	if rec != nil {
		if err := s.record(rec, q.Address, spec, candidates); err != nil {
			metrics.SearchesTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}
	}

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	ranked, page := Apply(candidates, spec, q.Page, size)

	outcome := metrics.OutcomeOK
	if len(ranked) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()
	metrics.SearchMatches.Observe(float64(len(ranked)))

	s.logger.Info("search complete",
		zap.String("address", q.Address),
		zap.Float64("lat", center.Lat),
		zap.Float64("lng", center.Lng),
		zap.Float64("radius_m", spec.RadiusM),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(ranked)),
		zap.Int("page", page.Index),
		zap.Int("page_size", page.Size),
		zap.Duration("took", time.Since(start)),
	)

	return &Result{
		Address:    q.Address,
		Center:     center,
		Filter:     spec,
		Candidates: len(candidates),
		Ranked:     ranked,
		Page:       page,
	}, nil
}

func (s *Service) resolveCenter(ctx context.Context, q Query) (model.Coordinate, error) {
	if q.Center != nil {
		return *q.Center, nil
	}
	addr := strings.TrimSpace(q.Address)
	if addr == "" {
		return model.Coordinate{}, fmt.Errorf("%w: no address or center given", geo.ErrNotFound)
	}
	c, err := s.geocoder.Resolve(ctx, addr)
	if err != nil {
		if !errors.Is(err, geo.ErrNotFound) {
			err = fmt.Errorf("%w: %v", geo.ErrNotFound, err)
		}
		s.logger.Warn("cannot resolve address", zap.String("address", addr), zap.Error(err))
		return model.Coordinate{}, err
	}
	return c, nil
}

func (s *Service) record(rec Recorder, address string, spec model.FilterSpec, candidates []model.Listing) error {
	if err := rec.SaveSearch(Session{
		Address:   address,
		Center:    spec.Center,
		Filter:    spec,
		CreatedAt: time.Now(),
	}); err != nil {
		return fmt.Errorf("saving search: %w", err)
	}
	inserted, err := rec.InsertBatch(candidates)
	if err != nil {
		return fmt.Errorf("saving candidates: %w", err)
	}
	s.logger.Debug("session recorded", zap.Int("inserted", inserted))
	return nil
}
