// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as logging, database paths, the Redis cache, background job cadence,
// and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// RedisConfig defines the optional Redis front cache settings. An empty Addr
// disables Redis entirely; the statistics cache then runs DB-only.
type RedisConfig struct {
	Addr     string        // REDIS_ADDR (e.g. "localhost:6379"; empty disables)
	Password string        // REDIS_PASSWORD
	DB       int           // REDIS_DB
	CacheTTL time.Duration // CACHE_TTL per statistics entry
}

// WorkerConfig defines the background job cadence.
type WorkerConfig struct {
	WarmInterval    time.Duration // STATS_WARM_INTERVAL between cache warm runs
	RefreshInterval time.Duration // RECOMMEND_REFRESH_INTERVAL between refresh runs
	ActiveWindow    time.Duration // RECOMMEND_ACTIVE_WINDOW of user activity considered for refresh
	WarmRPS         float64       // STATS_WARM_RPS pacing of warm queries (>= 0)
	WarmBurst       int           // STATS_WARM_BURST pacing bucket size (>= 1)
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-car-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// App
	DBPath      string // SQLite path
	MetricsAddr string // METRICS_ADDR for the Prometheus listener

	// Caching
	Redis RedisConfig

	// Background jobs
	Worker WorkerConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// App
		DBPath:      getenv("DB_PATH", "car.db"),
		MetricsAddr: getenv("METRICS_ADDR", ":9090"),

		// Caching
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
			CacheTTL: getdur("CACHE_TTL", time.Hour),
		},

		// Background jobs
		Worker: WorkerConfig{
			WarmInterval:    getdur("STATS_WARM_INTERVAL", time.Hour),
			RefreshInterval: getdur("RECOMMEND_REFRESH_INTERVAL", 30*time.Minute),
			ActiveWindow:    getdur("RECOMMEND_ACTIVE_WINDOW", 24*time.Hour),
			WarmRPS:         getfloat("STATS_WARM_RPS", 5.0),
			WarmBurst:       getint("STATS_WARM_BURST", 10),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-car-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.MetricsAddr) == "" {
		return cfg, errors.New("METRICS_ADDR must not be empty")
	}
	if cfg.Redis.CacheTTL <= 0 {
		return cfg, errors.New("CACHE_TTL must be > 0")
	}
	if cfg.Worker.WarmInterval <= 0 || cfg.Worker.RefreshInterval <= 0 {
		return cfg, errors.New("job intervals must be positive durations")
	}
	if cfg.Worker.ActiveWindow <= 0 {
		return cfg, errors.New("RECOMMEND_ACTIVE_WINDOW must be > 0")
	}
	if cfg.Worker.WarmRPS < 0 {
		return cfg, errors.New("STATS_WARM_RPS must be >= 0")
	}
	if cfg.Worker.WarmBurst < 1 {
		return cfg, errors.New("STATS_WARM_BURST must be >= 1")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
