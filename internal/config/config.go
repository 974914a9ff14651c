// Package config loads the link-tracker configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	infraconfig "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/config"
)

// Recording modes.
const (
	RecordingBuffered = "buffered"
	RecordingSync     = "sync"
)

// Default configuration values.
const (
	defaultServiceName  = "link-tracker"
	defaultServicePort  = 8080
	defaultVersion      = "0.1.0"
	defaultBaseURL      = "http://localhost:8080"
	defaultLoggingLevel = "info"
	defaultLoggingFmt   = "json"
	defaultDBHost       = "localhost"
	defaultDBPort       = 5432
	defaultDBName       = "link_tracker"
	defaultDBUser       = "postgres"
	defaultDBSSLMode    = "disable"
	defaultRedisAddress = "localhost:6379"
	defaultCacheTTL     = 10 * time.Minute

	defaultRecordingMode  = RecordingBuffered
	defaultBufferSize     = 1000
	defaultFlushThreshold = 100
	defaultFlushInterval  = time.Second
	defaultGeoTimeout     = 200 * time.Millisecond

	defaultMaxRequestsPerMinute = 60
	defaultWindowSeconds        = 60

	defaultBulkMaxItems    = 100
	defaultBulkMaxQuantity = 20
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Recording RecordingConfig `yaml:"recording"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Bulk      BulkConfig      `yaml:"bulk"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"LINK_TRACKER_PORT"     yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"             yaml:"debug"`
	// BaseURL prefixes generated short and QR URLs.
	BaseURL string `env:"LINK_TRACKER_BASE_URL" yaml:"base_url"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_LINK_TRACKER_HOST"     yaml:"host"`
	Port     int    `env:"POSTGRES_LINK_TRACKER_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_LINK_TRACKER_USER"     yaml:"user"`
	Password string `env:"POSTGRES_LINK_TRACKER_PASSWORD" yaml:"password"`
	Database string `env:"POSTGRES_LINK_TRACKER_DB"       yaml:"database"`
	SSLMode  string `env:"POSTGRES_LINK_TRACKER_SSLMODE"  yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// URL returns the connection string in URL form, as golang-migrate expects.
func (d *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// RedisConfig configures the optional resolution cache.
type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address  string        `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string        `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int           `env:"REDIS_DB"       yaml:"db"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// RecordingConfig controls how clicks reach the ledger.
type RecordingConfig struct {
	// Mode is "buffered" (background batch inserts) or "sync" (one insert per visit).
	Mode           string        `env:"RECORDING_MODE" yaml:"mode"`
	BufferSize     int           `yaml:"buffer_size"`
	FlushInterval  time.Duration `yaml:"flush_interval"`
	FlushThreshold int           `yaml:"flush_threshold"`
	SkipBots       bool          `env:"RECORDING_SKIP_BOTS" yaml:"skip_bots"`
	GeoTimeout     time.Duration `yaml:"geo_timeout"`
}

// RateLimitConfig limits the /api write endpoints per client IP.
type RateLimitConfig struct {
	MaxRequestsPerMinute int `yaml:"max_requests_per_minute"`
	WindowSeconds        int `yaml:"window_seconds"`
}

// Window returns the limiter window.
func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// BulkConfig bounds bulk generation.
type BulkConfig struct {
	MaxItems    int `yaml:"max_items"`
	MaxQuantity int `yaml:"max_quantity"`
	// InsertsPerSecond paces bulk inserts. Zero means unpaced.
	InsertsPerSecond float64 `yaml:"inserts_per_second"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setRecordingDefaults(&cfg.Recording)
	setRateLimitDefaults(&cfg.RateLimit)
	setBulkDefaults(&cfg.Bulk)
	setLoggingDefaults(&cfg.Logging)
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
	if svc.BaseURL == "" {
		svc.BaseURL = defaultBaseURL
	}
	svc.BaseURL = strings.TrimRight(svc.BaseURL, "/")
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == 0 {
		db.Port = defaultDBPort
	}
	if db.User == "" {
		db.User = defaultDBUser
	}
	if db.Database == "" {
		db.Database = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.CacheTTL == 0 {
		r.CacheTTL = defaultCacheTTL
	}
}

func setRecordingDefaults(rec *RecordingConfig) {
	if rec.Mode == "" {
		rec.Mode = defaultRecordingMode
	}
	if rec.BufferSize == 0 {
		rec.BufferSize = defaultBufferSize
	}
	if rec.FlushInterval == 0 {
		rec.FlushInterval = defaultFlushInterval
	}
	if rec.FlushThreshold == 0 {
		rec.FlushThreshold = defaultFlushThreshold
	}
	if rec.GeoTimeout == 0 {
		rec.GeoTimeout = defaultGeoTimeout
	}
}

func setRateLimitDefaults(rl *RateLimitConfig) {
	if rl.MaxRequestsPerMinute == 0 {
		rl.MaxRequestsPerMinute = defaultMaxRequestsPerMinute
	}
	if rl.WindowSeconds == 0 {
		rl.WindowSeconds = defaultWindowSeconds
	}
}

func setBulkDefaults(b *BulkConfig) {
	if b.MaxItems == 0 {
		b.MaxItems = defaultBulkMaxItems
	}
	if b.MaxQuantity == 0 {
		b.MaxQuantity = defaultBulkMaxQuantity
	}
}

func setLoggingDefaults(log *LoggingConfig) {
	if log.Level == "" {
		log.Level = defaultLoggingLevel
	}
	if log.Format == "" {
		log.Format = defaultLoggingFmt
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	checks := []error{
		infraconfig.ValidatePort("service.port", c.Service.Port),
		infraconfig.ValidateHTTPURL("service.base_url", c.Service.BaseURL),
		infraconfig.ValidateRequired("database.host", c.Database.Host),
		infraconfig.ValidateOneOf("recording.mode", c.Recording.Mode, RecordingBuffered, RecordingSync),
		infraconfig.ValidatePositive("recording.buffer_size", c.Recording.BufferSize),
		infraconfig.ValidatePositive("recording.flush_threshold", c.Recording.FlushThreshold),
		infraconfig.ValidatePositive("rate_limit.max_requests_per_minute", c.RateLimit.MaxRequestsPerMinute),
		infraconfig.ValidatePositive("bulk.max_items", c.Bulk.MaxItems),
		infraconfig.ValidatePositive("bulk.max_quantity", c.Bulk.MaxQuantity),
		infraconfig.ValidateLogLevel("logging.level", c.Logging.Level),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}

	if c.Redis.Enabled {
		if err := infraconfig.ValidateRequired("redis.address", c.Redis.Address); err != nil {
			return err
		}
	}
	if c.Bulk.InsertsPerSecond < 0 {
		return &infraconfig.ValidationError{Field: "bulk.inserts_per_second", Message: "must not be negative"}
	}
	return nil
}
