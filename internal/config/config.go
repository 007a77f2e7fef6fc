package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds rentscout settings. Every section has usable defaults, so
// running without a config file is fine.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Cache    CacheConfig    `yaml:"cache"`
	Source   SourceConfig   `yaml:"source"`
	Search   SearchConfig   `yaml:"search"`
	HTTP     HTTPConfig     `yaml:"http"`
	Output   OutputConfig   `yaml:"output"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// GeocoderConfig selects and configures the address resolver.
type GeocoderConfig struct {
	Provider   string `yaml:"provider"` // nominatim, static
	BaseURL    string `yaml:"base_url"`
	UserAgent  string `yaml:"user_agent"`
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxRetries int    `yaml:"max_retries"`
	BrowserTLS bool   `yaml:"browser_tls"`
}

// CacheConfig holds geocode cache settings.
type CacheConfig struct {
	Driver string        `yaml:"driver"` // memory, redis
	TTL    time.Duration `yaml:"ttl"`
	Redis  RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings for the cache.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// SourceConfig configures the mock listing source.
type SourceConfig struct {
	Count        int     `yaml:"count"`
	SpreadFactor float64 `yaml:"spread_factor"`
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	RadiusM     float64 `yaml:"radius_m"`
	PageSize    int     `yaml:"page_size"`
	MaxPageSize int     `yaml:"max_page_size"`
}

// HTTPConfig holds API server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// OutputConfig holds where session databases and logs are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a YAML config file. An empty path returns defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Geocoder.Provider == "" {
		c.Geocoder.Provider = "nominatim"
	}
	if c.Geocoder.UserAgent == "" {
		c.Geocoder.UserAgent = "rentscout/0.1 (rental listing search)"
	}
	if c.Geocoder.TimeoutSec <= 0 {
		c.Geocoder.TimeoutSec = 10
	}
	if c.Geocoder.MaxRetries <= 0 {
		c.Geocoder.MaxRetries = 3
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "memory"
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = time.Hour
	}
	if c.Source.Count <= 0 {
		c.Source.Count = 60
	}
	if c.Source.SpreadFactor <= 0 {
		c.Source.SpreadFactor = 1.3
	}
	if c.Search.RadiusM <= 0 {
		c.Search.RadiusM = 1000
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 10
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 50
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "./sessions"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Geocoder.Provider {
	case "nominatim", "static":
	default:
		return fmt.Errorf("geocoder.provider must be \"nominatim\" or \"static\", got %q", c.Geocoder.Provider)
	}
	switch c.Cache.Driver {
	case "memory":
	case "redis":
		if len(c.Cache.Redis.Addrs) == 0 {
			return fmt.Errorf("cache.redis.addrs is required when cache.driver is \"redis\"")
		}
	default:
		return fmt.Errorf("cache.driver must be \"memory\" or \"redis\", got %q", c.Cache.Driver)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Search.PageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.page_size %d exceeds search.max_page_size %d", c.Search.PageSize, c.Search.MaxPageSize)
	}
	return nil
}

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} with the environment value. Unset variables
// are left as-is.
func expandEnvVars(data []byte) []byte {
	return envVarRe.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envVarRe.FindSubmatch(match)[1]
		if val, ok := os.LookupEnv(string(name)); ok {
			return []byte(val)
		}
		return match
	})
}
