package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/circuitbreaker"
	infraconfig "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/config"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
	inframetrics "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/metrics"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/profiling"
	infraredis "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/redis"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/retry"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/analytics"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/api"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/attribution"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/config"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/handler"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/links"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/metrics"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/redirect"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/shortcode"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/storage"

	_ "github.com/lib/pq"
)

const (
	dbPingTimeout     = 5 * time.Second
	healthPingTimeout = 2 * time.Second
	dbConnectAttempts = 5
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// Initialize logger
	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// Profiling is opt-in through the environment
	profiling.StartPprofServer(log)
	profiler, err := profiling.StartPyroscope(cfg.Service.Name, log)
	if err != nil {
		log.Warn("Continuous profiling unavailable", logger.Error(err))
	}
	defer func() { _ = profiler.Stop() }()

	// Connect to database
	db, err := connectDatabase(cfg, log)
	if err != nil {
		log.Error("Failed to connect to database", logger.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	// Optional resolution cache
	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache, err = infraredis.NewClient(infraredis.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, serving without link cache", logger.Error(err))
			cache = nil
		} else {
			defer func() { _ = cache.Close() }()
		}
	}

	return runServer(cfg, log, db, cache)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := infraconfig.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// connectDatabase opens the pool and pings it, retrying while Postgres starts.
func connectDatabase(cfg *config.Config, log logger.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = dbConnectAttempts
	err = retry.Retry(context.Background(), retryCfg, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
		defer cancel()
		return db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info("Database connected",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("database", cfg.Database.Database),
	)

	return db, nil
}

// clickRecorder is what the pipeline records through, plus shutdown.
type clickRecorder interface {
	redirect.Recorder
	Stop()
}

type syncRecorder struct {
	*storage.LedgerRecorder
}

func (syncRecorder) Stop() {}

// newRecorder builds the recorder for the configured mode and feeds its
// outcomes into the click metrics.
func newRecorder(
	cfg *config.Config,
	ledger *storage.ClickLedger,
	m *metrics.Metrics,
	log logger.Logger,
) clickRecorder {
	if cfg.Recording.Mode == config.RecordingSync {
		breaker := circuitbreaker.New(circuitbreaker.Config{
			OnStateChange: func(from, to circuitbreaker.State) {
				log.Warn("Click ledger circuit changed state",
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			},
		})
		rec := storage.NewLedgerRecorder(ledger, breaker)
		rec.OnWritten(m.ClickRecorded)
		return syncRecorder{rec}
	}

	buf := storage.NewBuffer(cfg.Recording.BufferSize)
	rec := storage.NewBufferedRecorder(ledger, buf, log, cfg.Recording.FlushInterval, cfg.Recording.FlushThreshold)
	rec.OnFlush(func(written, failed int) {
		m.ClickRecorded(written)
		m.ClickRecordFailed(metrics.ReasonFlush, failed)
	})
	m.ObserveBufferDepth(rec.Pending)
	rec.Start()
	return rec
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, db *sqlx.DB, cache *redis.Client) int {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Stores
	linkStore := storage.NewLinkStore(db)
	ledger := storage.NewClickLedger(db)
	aggregates := storage.NewAnalytics(db)

	var resolver interface {
		redirect.LinkResolver
		links.Deactivator
	} = linkStore
	if cache != nil {
		resolver = storage.NewCachedLinks(linkStore, cache, cfg.Redis.CacheTTL, log)
	}

	recorder := newRecorder(cfg, ledger, m, log)
	defer recorder.Stop()

	// Services
	generator := shortcode.NewGenerator(shortcode.DefaultLength, linkStore.CodeExists)
	linkService := links.NewService(linkStore, resolver, generator, links.Config{
		BaseURL:          cfg.Service.BaseURL,
		MaxItems:         cfg.Bulk.MaxItems,
		MaxQuantity:      cfg.Bulk.MaxQuantity,
		InsertsPerSecond: cfg.Bulk.InsertsPerSecond,
	}, m, log)
	attributor := attribution.NewAttributor(attribution.UnknownLocator{}, cfg.Recording.GeoTimeout)
	pipeline := redirect.NewPipeline(resolver, attributor, recorder, m, log, redirect.Options{
		SkipBots: cfg.Recording.SkipBots,
	})
	reporter := analytics.NewReporter(linkStore, aggregates, linkService)

	// done channel signals background goroutines (rate limiter) on shutdown
	done := make(chan struct{})
	defer close(done)

	checks := api.HealthChecks{Database: pingFunc(db.PingContext)}
	if cache != nil {
		checks.Redis = pingFunc(func(ctx context.Context) error { return cache.Ping(ctx).Err() })
	}

	server := api.NewServer(api.Handlers{
		Redirect: handler.NewRedirectHandler(pipeline),
		Links:    handler.NewLinkHandler(linkService),
		Stats:    handler.NewStatsHandler(linkStore, reporter, linkService),
		Clicks:   handler.NewClickHandler(ledger),
	}, cfg, log, checks, api.Observability{
		HTTP:     inframetrics.NewHTTPMetrics(reg, metrics.Namespace),
		Gatherer: reg,
	}, done)

	log.Info("Link-tracker starting",
		logger.Int("port", cfg.Service.Port),
		logger.String("base_url", cfg.Service.BaseURL),
		logger.String("recording_mode", cfg.Recording.Mode),
		logger.Bool("cache_enabled", cache != nil),
	)

	if err := server.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Link-tracker exited cleanly")
	return 0
}

func pingFunc(ping func(context.Context) error) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), healthPingTimeout)
		defer cancel()
		return ping(ctx)
	}
}
