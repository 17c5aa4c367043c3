package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (run storage)
	Database DatabaseConfig

	// Redis (optional cache backend)
	Redis RedisConfig

	// External data providers
	Providers ProvidersConfig

	// Provider response cache
	Cache CacheConfig

	// Outbound HTTP
	HTTP HTTPConfig

	// Auth mode: "mock" trusts X-User-ID headers, "cognito" expects a
	// verified identity injected by the edge. Token verification never
	// happens in this service.
	AuthMode string

	// Plan catalog file (YAML)
	PlansFile string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ProvidersConfig holds data provider API settings.
type ProvidersConfig struct {
	// Market data
	PolygonAPIKey  string
	PolygonBaseURL string

	// Fundamentals: "fmp" (API) or "yahoo" (scrape)
	FundamentalsSource string
	FMPAPIKey          string
	FMPBaseURL         string
	YahooBaseURL       string

	// News
	NewsAPIKey      string
	NewsAPIBaseURL  string
	NewsMaxArticles int

	// When true, real providers are skipped entirely and the
	// deterministic mocks serve every request (local development).
	MockOnly bool
}

// CacheConfig holds provider cache settings.
type CacheConfig struct {
	// Backend: "memory", "sqlite" or "redis"
	Backend string

	// SQLite backend
	Path string

	// Per-datatype TTLs
	MarketTTL       time.Duration
	FundamentalsTTL time.Duration
	NewsTTL         time.Duration

	// Expired-entry sweep interval (scheduler)
	SweepInterval time.Duration
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Requests per second allowed against each provider
	ProviderRateLimit float64
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},

		Providers: ProvidersConfig{
			PolygonAPIKey:      getEnv("POLYGON_API_KEY", ""),
			PolygonBaseURL:     getEnv("POLYGON_BASE_URL", "https://api.polygon.io"),
			FundamentalsSource: getEnv("FUNDAMENTALS_SOURCE", "fmp"),
			FMPAPIKey:          getEnv("FMP_API_KEY", ""),
			FMPBaseURL:         getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
			YahooBaseURL:       getEnv("YAHOO_BASE_URL", "https://finance.yahoo.com"),
			NewsAPIKey:         getEnv("NEWS_API_KEY", ""),
			NewsAPIBaseURL:     getEnv("NEWS_API_BASE_URL", "https://newsapi.org/v2"),
			NewsMaxArticles:    getEnvAsInt("NEWS_MAX_ARTICLES", 20),
			MockOnly:           getEnvAsBool("PROVIDERS_MOCK_ONLY", false),
		},

		Cache: CacheConfig{
			Backend:         getEnv("CACHE_BACKEND", "sqlite"),
			Path:            getEnv("CACHE_DB_PATH", ".cache/alphalens/cache.sqlite"),
			MarketTTL:       getEnvAsDuration("CACHE_MARKET_TTL", "60s"),
			FundamentalsTTL: getEnvAsDuration("CACHE_FUNDAMENTALS_TTL", "24h"),
			NewsTTL:         getEnvAsDuration("CACHE_NEWS_TTL", "5m"),
			SweepInterval:   getEnvAsDuration("CACHE_SWEEP_INTERVAL", "10m"),
		},

		HTTP: HTTPConfig{
			Timeout:           getEnvAsDuration("HTTP_TIMEOUT", "10s"),
			MaxRetries:        getEnvAsInt("HTTP_MAX_RETRIES", 2),
			RetryBackoff:      getEnvAsDuration("HTTP_RETRY_BACKOFF", "500ms"),
			ProviderRateLimit: getEnvAsFloat("HTTP_PROVIDER_RATE_LIMIT", 5.0),
		},

		AuthMode:  getEnv("AUTH_MODE", "mock"),
		PlansFile: getEnv("PLANS_FILE", "config/plans.yaml"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Cache.Backend {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of: memory, sqlite, redis")
	}

	switch c.Providers.FundamentalsSource {
	case "fmp", "yahoo":
	default:
		return fmt.Errorf("FUNDAMENTALS_SOURCE must be one of: fmp, yahoo")
	}

	if c.AuthMode != "mock" && c.AuthMode != "cognito" {
		return fmt.Errorf("AUTH_MODE must be one of: mock, cognito")
	}

	return nil
}

// RedisAddr returns the host:port address for the Redis backend.
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
