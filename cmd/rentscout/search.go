package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/rendis/rentscout/internal/config"
	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/engine/listings"
	"github.com/rendis/rentscout/internal/engine/search"
	"github.com/rendis/rentscout/internal/engine/storage"
	logpkg "github.com/rendis/rentscout/internal/logger"
	"github.com/rendis/rentscout/internal/model"
	"github.com/rendis/rentscout/internal/tui"
)

func runSearch(args []string) error {
	var (
		q                         search.Query
		configPath, outputDir     string
		sellerStr, featuresStr    string
		areaPath, replayPath      string
		lat, lng                  float64
		offline, asJSON, noRecord bool
	)

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "Path to YAML config file")
	fs.StringVar(&q.Address, "address", "", "Free-text address to search around")
	fs.Float64Var(&lat, "lat", 0, "Center latitude (instead of -address)")
	fs.Float64Var(&lng, "lng", 0, "Center longitude (instead of -address)")
	fs.Float64Var(&q.Filter.RadiusM, "radius", -1, "Search radius in meters (default from config)")
	fs.Func("max-price", "Maximum monthly price", func(s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		q.Filter.MaxPrice = &v
		return nil
	})
	fs.Func("min-rooms", "Minimum number of rooms", func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		q.Filter.MinRooms = &v
		return nil
	})
	fs.Func("max-rooms", "Maximum number of rooms", func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		q.Filter.MaxRooms = &v
		return nil
	})
	fs.StringVar(&sellerStr, "seller", "any", "Seller filter: any, private, broker")
	fs.StringVar(&featuresStr, "features", "", "Comma-separated required features (e.g. parking,elevator)")
	fs.StringVar(&areaPath, "area", "", "GeoJSON polygon file; listings must fall inside it")
	fs.IntVar(&q.Page, "page", 0, "Zero-based page to print")
	fs.IntVar(&q.PageSize, "page-size", -1, "Listings per page (default from config)")
	fs.StringVar(&outputDir, "output", "", "Output directory for session files (default from config)")
	fs.StringVar(&replayPath, "replay", "", "Re-run against the candidates saved in a session .db")
	fs.BoolVar(&offline, "offline", false, "Resolve addresses from the built-in table instead of Nominatim")
	fs.BoolVar(&asJSON, "json", false, "Print the page as JSON on stdout")
	fs.BoolVar(&noRecord, "no-record", false, "Do not write a session .db")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rentscout search [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rentscout search -address \"Dizengoff 100, Tel Aviv\" -max-price 8000 -min-rooms 2 -seller private -features parking\n")
		fmt.Fprintf(os.Stderr, "  rentscout search -lat 32.0809 -lng 34.7806 -radius 500 -page 1\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath, offline)
	if err != nil {
		return err
	}

	// Validation
	coordMode := lat != 0 || lng != 0
	if q.Address == "" && !coordMode {
		return fmt.Errorf("either -address or -lat/-lng is required")
	}
	if coordMode {
		q.Center = &model.Coordinate{Lat: lat, Lng: lng}
		q.Filter.Center = *q.Center
	}
	if q.Filter.RadiusM < 0 {
		q.Filter.RadiusM = cfg.Search.RadiusM
	}
	if q.PageSize <= 0 {
		q.PageSize = cfg.Search.PageSize
	}
	if q.Filter.Seller, err = model.ParseSellerFilter(sellerStr); err != nil {
		return err
	}
	q.Filter.RequiredFeatures = model.ParseFeatures(featuresStr)
	if areaPath != "" {
		if q.Filter.Area, err = geo.LoadArea(areaPath); err != nil {
			return err
		}
	}
	if err := q.Filter.Validate(); err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}

	// Session files and log
	var paths storage.SessionPaths
	logOutputs := []string{"stderr"}
	if !noRecord {
		if paths, err = storage.NewSessionPaths(outputDir, time.Now()); err != nil {
			return err
		}
		logOutputs = []string{paths.Log}
		fmt.Fprintf(os.Stderr, "Log: %s\n", paths.Log)
	}
	logger, err := logpkg.NewLogger(config.GetEnv(), cfg.Logging.Level, logOutputs...)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("session start",
		zap.String("address", q.Address),
		zap.Bool("coord_mode", coordMode),
		zap.Any("filter", q.Filter),
		zap.Int("page", q.Page),
		zap.Int("page_size", q.PageSize),
	)

	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if replayPath != "" {
		replay, err := storage.NewStore(replayPath)
		if err != nil {
			return fmt.Errorf("opening replay session: %w", err)
		}
		defer replay.Close()
		svc = svc.WithSource(listings.NewStoreSource(replay))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	startTime := time.Now()
	var res *search.Result
	if noRecord {
		res, err = svc.Run(ctx, q)
	} else {
		store, serr := storage.NewStore(paths.DB)
		if serr != nil {
			return fmt.Errorf("opening store: %w", serr)
		}
		res, err = svc.RunAndRecord(ctx, q, store)
		store.Close()
		if err != nil {
			_ = os.Remove(paths.DB)
		}
	}
	if errors.Is(err, geo.ErrNotFound) {
		return fmt.Errorf("address %q could not be resolved; check the spelling or pass -lat/-lng", q.Address)
	}
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Page); err != nil {
			return err
		}
	} else {
		printPage(res)
	}

	printSummary(res, paths, time.Since(startTime))
	if !noRecord {
		tui.SaveRecent(paths.DB, res.Address)
	}
	return nil
}

func printPage(res *search.Result) {
	if res.Empty() {
		fmt.Println("No listings match these filters. Try a wider radius, a higher max price or fewer required features.")
		return
	}
	if res.Page.Empty() {
		fmt.Printf("Page %d is past the last page (%d pages).\n", res.Page.Index, res.Page.TotalPages)
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDIST\tPRICE\tROOMS\tSELLER\tTITLE\tFEATURES")
	offset := res.Page.Index * res.Page.Size
	for i, m := range res.Page.Items {
		l := m.Listing
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			offset+i+1,
			formatDistance(m.DistanceM),
			humanize.Comma(l.Price),
			strconv.FormatFloat(l.Rooms, 'f', -1, 64),
			l.Seller,
			l.Title,
			strings.Join(l.Features, ","),
		)
	}
	tw.Flush()
	fmt.Printf("\nPage %d of %d\n", res.Page.Index+1, res.Page.TotalPages)
}

func printSummary(res *search.Result, paths storage.SessionPaths, took time.Duration) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  RentScout Search\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	if res.Address != "" {
		fmt.Fprintf(os.Stderr, "  Address:    %s\n", res.Address)
	}
	fmt.Fprintf(os.Stderr, "  Center:     %.4f, %.4f (r=%sm)\n",
		res.Center.Lat, res.Center.Lng, humanize.Commaf(res.Filter.RadiusM))
	fmt.Fprintf(os.Stderr, "  Candidates: %s\n", humanize.Comma(int64(res.Candidates)))
	fmt.Fprintf(os.Stderr, "  Matches:    %s\n", humanize.Comma(int64(res.Page.Total)))
	fmt.Fprintf(os.Stderr, "  Duration:   %s\n", took.Truncate(time.Millisecond))
	if paths.DB != "" {
		fmt.Fprintf(os.Stderr, "  Database:   %s\n", paths.DB)
		fmt.Fprintf(os.Stderr, "  Log:        %s\n", paths.Log)
	}
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
}

func formatDistance(m float64) string {
	if m >= 1000 {
		return fmt.Sprintf("%.2f km", m/1000)
	}
	return fmt.Sprintf("%.0f m", m)
}
