package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/rendis/rentscout/internal/engine/search"
	"github.com/rendis/rentscout/internal/engine/storage"
	"github.com/rendis/rentscout/internal/export"
)

func runExport(args []string) error {
	var dbPath, outputPath, format string

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "", "Path to session .db file (required)")
	fs.StringVar(&outputPath, "output", "", "Output file path (default: same dir as db)")
	fs.StringVar(&format, "format", export.FormatCSV, "Export format: csv, geojson")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rentscout export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rentscout export -db ./sessions/rentscout_20260212_101500.db\n")
		fmt.Fprintf(os.Stderr, "  rentscout export -db session.db -format geojson -output matches.geojson\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if dbPath == "" {
		return fmt.Errorf("-db is required")
	}
	if format != export.FormatCSV && format != export.FormatGeoJSON {
		return fmt.Errorf("unsupported format: %s (csv or geojson)", format)
	}

	// Default output path
	if outputPath == "" {
		outputPath = storage.SiblingPath(dbPath, "."+format)
	}

	sess, candidates, err := storage.LoadSession(dbPath)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	ranked := search.Filter(candidates, sess.Filter)
	search.Rank(ranked)
	if len(ranked) == 0 {
		return fmt.Errorf("no listings in %s match the saved filters (%d candidates)", dbPath, len(candidates))
	}

	if err := export.ToFile(outputPath, format, sess.Center, sess.Filter.RadiusM, ranked); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Exported %s of %s listings to %s (search from %s)\n",
		humanize.Comma(int64(len(ranked))), humanize.Comma(int64(len(candidates))),
		outputPath, humanize.Time(sess.CreatedAt))
	return nil
}
