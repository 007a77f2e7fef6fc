package main

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/rendis/rentscout/internal/engine/search"
	"github.com/rendis/rentscout/internal/model"
)

func TestLoadConfigOffline(t *testing.T) {
	t.Setenv("RENTSCOUT_CONFIG", "")

	cfg, err := loadConfig("", true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Geocoder.Provider != "static" {
		t.Errorf("provider = %q, want static", cfg.Geocoder.Provider)
	}
}

func TestBuildServiceOfflineSearch(t *testing.T) {
	t.Setenv("RENTSCOUT_CONFIG", "")
	cfg, err := loadConfig("", true)
	if err != nil {
		t.Fatal(err)
	}

	svc, cleanup, err := buildService(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildService: %v", err)
	}
	defer cleanup()

	res, err := svc.Run(context.Background(), search.Query{
		Address:  "Dizengoff 100, Tel Aviv",
		Filter:   model.FilterSpec{RadiusM: cfg.Search.RadiusM, Seller: model.SellerAny},
		PageSize: cfg.Search.PageSize,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Candidates != cfg.Source.Count {
		t.Errorf("candidates = %d, want %d", res.Candidates, cfg.Source.Count)
	}
	if res.Center != (model.Coordinate{Lat: 32.0809, Lng: 34.7806}) {
		t.Errorf("center = %v", res.Center)
	}
}

func TestBuildServiceRedisNeedsAddrs(t *testing.T) {
	t.Setenv("RENTSCOUT_CONFIG", "")
	cfg, err := loadConfig("", true)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Cache.Driver = "redis"

	if _, _, err := buildService(cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for redis without addrs")
	}
}

func TestFormatDistance(t *testing.T) {
	tests := map[float64]string{
		0:      "0 m",
		999.4:  "999 m",
		1000:   "1.00 km",
		2345.6: "2.35 km",
	}
	for in, want := range tests {
		if got := formatDistance(in); got != want {
			t.Errorf("formatDistance(%v) = %q, want %q", in, got, want)
		}
	}
}
