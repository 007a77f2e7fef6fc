package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/rendis/rentscout/internal/config"
	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/engine/listings"
	"github.com/rendis/rentscout/internal/engine/search"
	"github.com/rendis/rentscout/internal/metrics"
)

// loadConfig reads the config file named by -config, falling back to
// $RENTSCOUT_CONFIG, then to built-in defaults.
func loadConfig(path string, offline bool) (config.Config, error) {
	if path == "" {
		path = os.Getenv("RENTSCOUT_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if offline {
		cfg.Geocoder.Provider = "static"
	}
	return cfg, nil
}

// buildService assembles geocoder -> cache -> mock source -> search service.
// The returned cleanup closes external connections.
func buildService(cfg config.Config, logger *zap.Logger) (*search.Service, func(), error) {
	geocoder, cleanup, err := buildGeocoder(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	source := listings.NewMockSource(cfg.Source.Count, cfg.Source.SpreadFactor)
	return search.NewService(geocoder, source, logger), cleanup, nil
}

func buildGeocoder(cfg config.Config, logger *zap.Logger) (geo.Geocoder, func(), error) {
	var base geo.Geocoder
	switch cfg.Geocoder.Provider {
	case "static":
		base = geo.NewStatic(geo.KnownAddresses)
	default:
		client := geo.NewClient(geo.ClientOptions{
			UserAgent:  cfg.Geocoder.UserAgent,
			Timeout:    time.Duration(cfg.Geocoder.TimeoutSec) * time.Second,
			MaxRetries: cfg.Geocoder.MaxRetries,
			BrowserTLS: cfg.Geocoder.BrowserTLS,
		})
		base = geo.NewNominatim(client, cfg.Geocoder.BaseURL)
	}

	var (
		store   geo.CacheStore
		cleanup = func() {}
	)
	switch cfg.Cache.Driver {
	case "redis":
		rs, err := geo.NewRedisStore(geo.RedisConfig{
			Addrs:    cfg.Cache.Redis.Addrs,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("geocode cache: %w", err)
		}
		store = rs
		cleanup = rs.Close
	default:
		store = geo.NewMemoryStore()
	}

	logger.Debug("geocoder ready",
		zap.String("provider", cfg.Geocoder.Provider),
		zap.String("cache", cfg.Cache.Driver),
		zap.Duration("ttl", cfg.Cache.TTL),
	)
	return geo.NewCache(base, store, cfg.Cache.TTL, metrics.GeocodeCacheTotal, logger), cleanup, nil
}
