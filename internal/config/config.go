// Package config loads the process-wide, read-only service configuration.
// It is initialized once at startup and injected into components; nothing
// mutates it afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"tripnav/internal/model"
)

// ProviderConfig configures one external routing provider.
type ProviderConfig struct {
	BaseURL string  `yaml:"baseUrl"`
	APIKey  string  `yaml:"apiKey"`
	QPS     float64 `yaml:"qps"`
	Burst   int     `yaml:"burst"`
}

// BalancedWeights are the tunable cost weights of the balanced strategy.
type BalancedWeights struct {
	Distance   float64 `yaml:"distance"`
	Time       float64 `yaml:"time"`
	Preference float64 `yaml:"preference"`
}

// Config is the full service configuration.
type Config struct {
	Port string `yaml:"port"`

	RedisURL    string `yaml:"redisUrl"`
	DatabaseURL string `yaml:"databaseUrl"`
	CacheDBPath string `yaml:"cacheDbPath"`

	// ProviderTimeoutSec bounds every single outbound provider call.
	ProviderTimeoutSec int `yaml:"providerTimeoutSec"`
	// MatrixConcurrency bounds the worker pool for pairwise matrix work.
	MatrixConcurrency int `yaml:"matrixConcurrency"`

	Tmap   ProviderConfig `yaml:"tmap"`
	Google ProviderConfig `yaml:"google"`
	OSRM   ProviderConfig `yaml:"osrm"`

	// Congestion multipliers applied by the time strategy, keyed by block.
	Congestion map[string]float64 `yaml:"congestion"`

	Balanced BalancedWeights `yaml:"balanced"`
}

// Default returns the built-in configuration. Values mirror the tuning of
// the original service and are overridden by file and environment.
func Default() Config {
	return Config{
		Port:               "8080",
		ProviderTimeoutSec: 8,
		MatrixConcurrency:  4,
		Tmap:               ProviderConfig{BaseURL: "https://apis.openapi.sk.com/tmap", QPS: 5, Burst: 5},
		Google:             ProviderConfig{BaseURL: "https://maps.googleapis.com/maps/api/distancematrix", QPS: 10, Burst: 10},
		OSRM:               ProviderConfig{BaseURL: "https://router.project-osrm.org", QPS: 1, Burst: 2},
		Congestion: map[string]float64{
			model.BlockBreakfast:         1.5,
			model.BlockMorningActivity:   1.0,
			model.BlockLunch:             1.3,
			model.BlockCafe:              1.1,
			model.BlockAfternoonActivity: 1.2,
			model.BlockDinner:            1.8,
			model.BlockEveningActivity:   1.2,
			model.BlockFreeTime:          1.0,
		},
		Balanced: BalancedWeights{Distance: 0.4, Time: 0.3, Preference: 0.3},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("CACHE_DB_PATH"); v != "" {
		cfg.CacheDBPath = v
	}
	if v := os.Getenv("TMAP_API_KEY"); v != "" {
		cfg.Tmap.APIKey = v
	}
	if v := os.Getenv("GOOGLE_MAPS_API_KEY"); v != "" {
		cfg.Google.APIKey = v
	}
	if v := os.Getenv("OSRM_BASE_URL"); v != "" {
		cfg.OSRM.BaseURL = v
	}
	if v := os.Getenv("MATRIX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MatrixConcurrency = n
		}
	}
	if v := os.Getenv("PROVIDER_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ProviderTimeoutSec = n
		}
	}
}

func (c Config) validate() error {
	if c.ProviderTimeoutSec <= 0 {
		return fmt.Errorf("providerTimeoutSec must be positive, got %d", c.ProviderTimeoutSec)
	}
	if c.MatrixConcurrency <= 0 {
		return fmt.Errorf("matrixConcurrency must be positive, got %d", c.MatrixConcurrency)
	}
	w := c.Balanced
	if w.Distance < 0 || w.Time < 0 || w.Preference < 0 {
		return fmt.Errorf("balanced weights must be non-negative: %+v", w)
	}
	if w.Distance+w.Time+w.Preference == 0 {
		return fmt.Errorf("balanced weights must not all be zero")
	}
	return nil
}

// CongestionFactor returns the multiplier for a time block, defaulting to 1.
func (c Config) CongestionFactor(block string) float64 {
	if f, ok := c.Congestion[block]; ok && f > 0 {
		return f
	}
	return 1.0
}
