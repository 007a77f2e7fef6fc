package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Geocoder.Provider != "nominatim" || cfg.Cache.Driver != "memory" {
		t.Errorf("provider/driver = %q/%q", cfg.Geocoder.Provider, cfg.Cache.Driver)
	}
	if cfg.Cache.TTL != time.Hour {
		t.Errorf("TTL = %v, want 1h", cfg.Cache.TTL)
	}
	if cfg.Source.Count != 60 || cfg.Source.SpreadFactor != 1.3 {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Search.RadiusM != 1000 || cfg.Search.PageSize != 10 || cfg.Search.MaxPageSize != 50 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.HTTP.Port != 8080 || cfg.Output.Dir != "./sessions" {
		t.Errorf("http/output = %+v / %+v", cfg.HTTP, cfg.Output)
	}
}

func TestLoadFileWithEnvExpansion(t *testing.T) {
	t.Setenv("RENTSCOUT_TEST_REDIS", "cache.internal:6379")
	path := writeConfig(t, `
logging:
  level: debug
geocoder:
  provider: static
cache:
  driver: redis
  ttl: 15m
  redis:
    addrs: ["${RENTSCOUT_TEST_REDIS}"]
    password: "${RENTSCOUT_TEST_UNSET}"
search:
  radius_m: 750
  page_size: 20
http:
  port: 9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Geocoder.Provider != "static" {
		t.Errorf("logging/geocoder = %+v / %+v", cfg.Logging, cfg.Geocoder)
	}
	if cfg.Cache.TTL != 15*time.Minute {
		t.Errorf("TTL = %v", cfg.Cache.TTL)
	}
	if len(cfg.Cache.Redis.Addrs) != 1 || cfg.Cache.Redis.Addrs[0] != "cache.internal:6379" {
		t.Errorf("addrs = %v", cfg.Cache.Redis.Addrs)
	}
	if cfg.Cache.Redis.Password != "${RENTSCOUT_TEST_UNSET}" {
		t.Errorf("unset variable should stay as-is, got %q", cfg.Cache.Redis.Password)
	}
	if cfg.Search.RadiusM != 750 || cfg.Search.PageSize != 20 || cfg.HTTP.Port != 9090 {
		t.Errorf("search/http = %+v / %+v", cfg.Search, cfg.HTTP)
	}
	// Untouched sections still get defaults.
	if cfg.Geocoder.TimeoutSec != 10 || cfg.Search.MaxPageSize != 50 {
		t.Errorf("defaults not applied: %+v / %+v", cfg.Geocoder, cfg.Search)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "search: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.Geocoder.Provider = "google" }, "geocoder.provider"},
		{"unknown driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
		{"redis without addrs", func(c *Config) { c.Cache.Driver = "redis" }, "cache.redis.addrs"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"page size over max", func(c *Config) { c.Search.PageSize = 100 }, "search.page_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
