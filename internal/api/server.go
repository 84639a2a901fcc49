package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"tripnav/internal/cache"
	"tripnav/internal/config"
	"tripnav/internal/matrix"
	"tripnav/internal/ratelimit"
	"tripnav/internal/route"
	"tripnav/internal/strategy"
)

// Server owns the HTTP surface and the wired optimization pipeline.
type Server struct {
	Cfg          config.Config
	Orchestrator *route.Orchestrator
	Selector     *strategy.Selector
	Broker       EventBroker
	Cache        cache.DistanceCache
}

// NewServer wires the pipeline from configuration. Cache backend selection:
// DATABASE_URL wins, then CACHE_DB_PATH, then REDIS_URL, then in-memory.
// Providers are registered only when their credentials are present, so a
// bare deployment still works end to end on synthetic estimates.
func NewServer(cfg config.Config) (*Server, error) {
	var c cache.DistanceCache
	switch {
	case cfg.DatabaseURL != "":
		pg, err := cache.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c = pg
	case cfg.CacheDBPath != "":
		sq, err := cache.NewSqlite(cfg.CacheDBPath)
		if err != nil {
			return nil, err
		}
		c = sq
	case cfg.RedisURL != "":
		rd, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		c = rd
	default:
		c = cache.NewMemory()
	}

	limiter := ratelimit.NewRegistry()
	timeout := time.Duration(cfg.ProviderTimeoutSec) * time.Second

	var providers []matrix.Provider
	if cfg.Tmap.APIKey != "" {
		limiter.Register("tmap", cfg.Tmap.QPS, cfg.Tmap.Burst)
		providers = append(providers, matrix.NewTmapProvider(cfg.Tmap, limiter, timeout, cfg.MatrixConcurrency))
	}
	if cfg.Google.APIKey != "" {
		limiter.Register("google", cfg.Google.QPS, cfg.Google.Burst)
		providers = append(providers, matrix.NewGoogleProvider(cfg.Google, limiter, timeout))
	}
	if cfg.OSRM.BaseURL != "" {
		limiter.Register("osrm", cfg.OSRM.QPS, cfg.OSRM.Burst)
		providers = append(providers, matrix.NewOSRMProvider(cfg.OSRM, limiter, timeout))
	}
	if len(providers) == 0 {
		log.Printf("api: no routing providers configured, distances will be synthetic")
	}

	var broker EventBroker
	if cfg.RedisURL != "" {
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			log.Printf("api: redis broker unavailable, using in-process broker: %v", err)
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	sel := strategy.NewSelector(cfg)
	return &Server{
		Cfg:          cfg,
		Orchestrator: route.NewOrchestrator(matrix.NewBuilder(providers, c, cfg.MatrixConcurrency), sel, broker),
		Selector:     sel,
		Broker:       broker,
		Cache:        c,
	}, nil
}

// Routes registers every handler on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/optimize", s.OptimizeHandler)
	mux.HandleFunc("/v1/optimize/day", s.OptimizeDayHandler)
	mux.HandleFunc("/v1/strategies", s.StrategiesHandler)
	mux.HandleFunc("/v1/strategies/recommend", s.RecommendHandler)
	mux.HandleFunc("/v1/optimizations/", s.ProgressWSHandler)
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
}

// pingable is satisfied by the SQL-backed caches.
type pingable interface {
	Ping(ctx context.Context) error
}
