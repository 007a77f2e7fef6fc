package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	chirouter "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/engine/search"
	logpkg "github.com/rendis/rentscout/internal/logger"
	"github.com/rendis/rentscout/internal/metrics"
	"github.com/rendis/rentscout/internal/model"
)

// Error codes returned in ErrorResponse.Code.
const (
	CodeAddressNotFound = "address_not_found"
	CodeInvalidFilter   = "invalid_filter"
	CodeInternalError   = "internal_error"
)

// Searcher runs one search query.
type Searcher interface {
	Run(ctx context.Context, q search.Query) (*search.Result, error)
}

// Options tune request parsing.
type Options struct {
	DefaultRadiusM  float64
	DefaultPageSize int
	MaxPageSize     int
}

// Server serves the search API.
type Server struct {
	searcher Searcher
	opts     Options
	logger   *zap.Logger
}

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchResponse is the JSON body of GET /v1/search.
type SearchResponse struct {
	Address    string           `json:"address,omitempty"`
	Center     model.Coordinate `json:"center"`
	Filter     model.FilterSpec `json:"filter"`
	Candidates int              `json:"candidates"`
	HasPrev    bool             `json:"has_prev"`
	HasNext    bool             `json:"has_next"`
	model.Page
}

func NewServer(searcher Searcher, opts Options, logger *zap.Logger) *Server {
	if opts.DefaultRadiusM <= 0 {
		opts.DefaultRadiusM = 1000
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = search.DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{searcher: searcher, opts: opts, logger: logger}
}

// Router mounts the API routes with recovery, request IDs, request logging
// and Prometheus instrumentation.
func (s *Server) Router() http.Handler {
	r := chirouter.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/v1/search", s.Search)
	return r
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Search handles GET /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidFilter, err.Error())
		return
	}

	res, err := s.searcher.Run(r.Context(), q)
	if err != nil {
		s.handleError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Address:    res.Address,
		Center:     res.Center,
		Filter:     res.Filter,
		Candidates: res.Candidates,
		HasPrev:    res.Page.HasPrev(),
		HasNext:    res.Page.HasNext(),
		Page:       res.Page,
	})
}

func (s *Server) parseQuery(r *http.Request) (search.Query, error) {
	v := r.URL.Query()
	q := search.Query{
		Address:  strings.TrimSpace(v.Get("address")),
		PageSize: s.opts.DefaultPageSize,
	}

	latStr, lngStr := v.Get("lat"), v.Get("lng")
	switch {
	case latStr != "" || lngStr != "":
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return q, fmt.Errorf("invalid lat %q", latStr)
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return q, fmt.Errorf("invalid lng %q", lngStr)
		}
		q.Center = &model.Coordinate{Lat: lat, Lng: lng}
		q.Filter.Center = *q.Center
	case q.Address == "":
		return q, errors.New("address or lat/lng is required")
	}

	q.Filter.RadiusM = s.opts.DefaultRadiusM
	if raw := v.Get("radius"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("invalid radius %q", raw)
		}
		q.Filter.RadiusM = radius
	}
	if raw := v.Get("max_price"); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, fmt.Errorf("invalid max_price %q", raw)
		}
		q.Filter.MaxPrice = &price
	}
	for name, dst := range map[string]**float64{
		"min_rooms": &q.Filter.MinRooms,
		"max_rooms": &q.Filter.MaxRooms,
	} {
		raw := v.Get(name)
		if raw == "" {
			continue
		}
		rooms, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, fmt.Errorf("invalid %s %q", name, raw)
		}
		*dst = &rooms
	}

	seller, err := model.ParseSellerFilter(v.Get("seller"))
	if err != nil {
		return q, err
	}
	q.Filter.Seller = seller
	q.Filter.RequiredFeatures = model.ParseFeatures(v.Get("features"))
	if raw := v.Get("area"); raw != "" {
		area, err := geo.ParseArea([]byte(raw))
		if err != nil {
			return q, fmt.Errorf("invalid area: %w", err)
		}
		q.Filter.Area = area
	}

	if raw := v.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("invalid page %q", raw)
		}
		q.Page = page
	}
	if raw := v.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size <= 0 {
			return q, fmt.Errorf("invalid page_size %q", raw)
		}
		q.PageSize = min(size, s.opts.MaxPageSize)
	}

	// The center of an address query is unknown until geocoded; a zero
	// coordinate is in range, so only the remaining fields are checked.
	if err := q.Filter.Validate(); err != nil {
		return q, err
	}
	return q, nil
}

func (s *Server) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logpkg.FromContext(ctx)
	switch {
	case errors.Is(err, geo.ErrNotFound):
		log.Warn("address not found", zap.Error(err))
		writeError(w, http.StatusNotFound, CodeAddressNotFound, "address could not be resolved")
	case errors.Is(err, model.ErrInvalidFilterSpec):
		writeError(w, http.StatusBadRequest, CodeInvalidFilter, err.Error())
	default:
		log.Error("search failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
