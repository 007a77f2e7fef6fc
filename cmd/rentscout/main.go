package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/rendis/rentscout/internal/config"
	logpkg "github.com/rendis/rentscout/internal/logger"
	"github.com/rendis/rentscout/internal/tui"
)

var version = "dev"

func main() {
	// .env is optional
	_ = godotenv.Load()

	if len(os.Args) > 1 && os.Args[0] != "" {
		var err error
		switch os.Args[1] {
		case "search":
			err = runSearch(os.Args[2:])
		case "export":
			err = runExport(os.Args[2:])
		case "serve":
			err = runServe(os.Args[2:])
		case "version":
			fmt.Println("rentscout " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		default:
			// Flags only ("rentscout -offline") → TUI
			err = runTUI(os.Args[1:])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// No subcommand → launch TUI
	if err := runTUI(nil); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(args []string) error {
	var configPath string
	var offline bool

	fs := flag.NewFlagSet("rentscout", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to YAML config file")
	fs.BoolVar(&offline, "offline", false, "Resolve addresses from the built-in table instead of Nominatim")
	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath, offline)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logger, err := logpkg.NewLogger(config.GetEnv(), cfg.Logging.Level,
		filepath.Join(cfg.Output.Dir, "rentscout.log"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(tui.Options{
		Service:   svc,
		Logger:    logger,
		OutputDir: cfg.Output.Dir,
		LogLevel:  cfg.Logging.Level,
		RadiusM:   cfg.Search.RadiusM,
		PageSize:  cfg.Search.PageSize,
		Version:   version,
	})
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `rentscout - rental listing search

Usage:
  rentscout [-config f]   Launch interactive TUI
  rentscout search [flags] Run a headless search
  rentscout export [flags] Export a session .db to CSV or GeoJSON
  rentscout serve [flags]  Serve the search HTTP API
  rentscout version        Show version

Run 'rentscout search --help', 'rentscout export --help' or
'rentscout serve --help' for flags.
`)
}
