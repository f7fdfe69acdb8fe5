package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxConcurrency int

	// Cache
	CacheTTL      time.Duration
	CacheMaxItems int

	// Page draining
	DrainPageSize int
	DrainMaxPages int

	// Observability
	OTLPEndpoint string

	// Supabase
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string

	// Auth
	AuthEnabled          bool // AUTH_ENABLED=false leaves customer routes public (local dev)
	JWTSecret            string
	SessionWarnThreshold time.Duration
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 10*time.Second),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		InitialBackoff: getEnvDuration("INITIAL_BACKOFF", 100*time.Millisecond),
		MaxBackoff:     getEnvDuration("MAX_BACKOFF", 2*time.Second),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		CacheTTL:      getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheMaxItems: getEnvInt("CACHE_MAX_ITEMS", 512),

		DrainPageSize: getEnvInt("DRAIN_PAGE_SIZE", 100),
		DrainMaxPages: getEnvInt("DRAIN_MAX_PAGES", 20),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		AuthEnabled:          getEnv("AUTH_ENABLED", "true") == "true",
		JWTSecret:            getEnv("JWT_SECRET", "pfd-default-dev-secret-change-me"),
		SessionWarnThreshold: getEnvDuration("SESSION_WARN_THRESHOLD", 5*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
