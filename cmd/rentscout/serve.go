package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rendis/rentscout/internal/config"
	logpkg "github.com/rendis/rentscout/internal/logger"
	chiTransport "github.com/rendis/rentscout/internal/transport/chi"
)

func runServe(args []string) error {
	var configPath string
	var port int
	var offline bool

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "Path to YAML config file")
	fs.IntVar(&port, "port", 0, "HTTP port (default from config)")
	fs.BoolVar(&offline, "offline", false, "Resolve addresses from the built-in table instead of Nominatim")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rentscout serve [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  rentscout serve -port 8080\n")
		fmt.Fprintf(os.Stderr, "  curl 'localhost:8080/v1/search?address=Dizengoff+100,+Tel+Aviv&max_price=8000&seller=private'\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(configPath, offline)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.HTTP.Port = port
	}

	env := config.GetEnv()
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting rentscout API server",
		zap.String("version", version),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("geocoder", cfg.Geocoder.Provider),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	svc, cleanup, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := chiTransport.NewServer(svc, chiTransport.Options{
		DefaultRadiusM:  cfg.Search.RadiusM,
		DefaultPageSize: cfg.Search.PageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
