// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, feed limits, identity,
// usage metering, rate limiting, and observability.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "campus-mood-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// FeedConfig defines posting limits and the feed's batching cadence.
type FeedConfig struct {
	DailyPostLimit        int           // DAILY_POST_LIMIT
	PostRetention         time.Duration // POST_RETENTION
	ReactionBatchInterval time.Duration // REACTION_BATCH_INTERVAL
	RetentionSweep        time.Duration // RETENTION_SWEEP_INTERVAL
	PageSize              int           // FEED_PAGE_SIZE
	Timezone              string        // TZ_NAME; day keys follow this zone
}

// AuthConfig defines bearer-token verification and the sign-in allowlist.
type AuthConfig struct {
	JWTSecret      string   // AUTH_JWT_SECRET; empty disables bearer tokens
	JWTIssuer      string   // AUTH_JWT_ISSUER
	JWTAudience    string   // AUTH_JWT_AUDIENCE
	AllowedDomains []string // ALLOWED_EMAIL_DOMAINS; empty admits any domain
}

// UsageConfig defines the daily store budget and where counters live.
type UsageConfig struct {
	ReadLimit     int64  // USAGE_READ_LIMIT
	WriteLimit    int64  // USAGE_WRITE_LIMIT
	Backend       string // USAGE_BACKEND: db|redis
	RedisAddr     string // REDIS_ADDR
	RedisPassword string // REDIS_PASSWORD
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath string // SQLite path
	Feed   FeedConfig
	Auth   AuthConfig
	Usage  UsageConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

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
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath: getenv("DB_PATH", "mood.db"),
		Feed: FeedConfig{
			DailyPostLimit:        getint("DAILY_POST_LIMIT", 10),
			PostRetention:         getdur("POST_RETENTION", 7*24*time.Hour),
			ReactionBatchInterval: getdur("REACTION_BATCH_INTERVAL", 30*time.Second),
			RetentionSweep:        getdur("RETENTION_SWEEP_INTERVAL", time.Hour),
			PageSize:              getint("FEED_PAGE_SIZE", 20),
			Timezone:              getenv("TZ_NAME", "Local"),
		},
		Auth: AuthConfig{
			JWTSecret:      getenv("AUTH_JWT_SECRET", ""),
			JWTIssuer:      getenv("AUTH_JWT_ISSUER", ""),
			JWTAudience:    getenv("AUTH_JWT_AUDIENCE", ""),
			AllowedDomains: splitCSV(strings.ToLower(getenv("ALLOWED_EMAIL_DOMAINS", ""))),
		},
		Usage: UsageConfig{
			ReadLimit:     int64(getint("USAGE_READ_LIMIT", 50000)),
			WriteLimit:    int64(getint("USAGE_WRITE_LIMIT", 20000)),
			Backend:       strings.ToLower(getenv("USAGE_BACKEND", "db")),
			RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getenv("REDIS_PASSWORD", ""),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "campus-mood-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Feed.DailyPostLimit < 1 {
		return cfg, errors.New("DAILY_POST_LIMIT must be >= 1")
	}
	if cfg.Feed.PostRetention <= 0 || cfg.Feed.ReactionBatchInterval <= 0 || cfg.Feed.RetentionSweep <= 0 {
		return cfg, errors.New("POST_RETENTION, REACTION_BATCH_INTERVAL and RETENTION_SWEEP_INTERVAL must be positive durations")
	}
	if cfg.Feed.PageSize < 1 || cfg.Feed.PageSize > 50 {
		return cfg, errors.New("FEED_PAGE_SIZE must be between 1 and 50")
	}
	if _, err := time.LoadLocation(cfg.Feed.Timezone); err != nil {
		return cfg, fmt.Errorf("TZ_NAME: %w", err)
	}
	if cfg.Usage.ReadLimit < 1 || cfg.Usage.WriteLimit < 1 {
		return cfg, errors.New("USAGE_READ_LIMIT and USAGE_WRITE_LIMIT must be >= 1")
	}
	switch cfg.Usage.Backend {
	case "db":
	case "redis":
		if strings.TrimSpace(cfg.Usage.RedisAddr) == "" {
			return cfg, errors.New("REDIS_ADDR must not be empty when USAGE_BACKEND=redis")
		}
	default:
		return cfg, errors.New("USAGE_BACKEND must be one of: db, redis")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return cfg, nil
}

// Location resolves the configured day-boundary time zone.
func (f FeedConfig) Location() *time.Location {
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DevIdentityHeaders reports whether X-User-ID / X-User-Email are trusted:
// only outside release mode and only when no token secret is configured.
func (c Config) DevIdentityHeaders() bool {
	return c.Auth.JWTSecret == "" && c.GinMode != "release"
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

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
