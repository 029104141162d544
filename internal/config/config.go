package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port            int
	Env             string
	ShutdownTimeout time.Duration

	// CORS
	AllowedOrigins []string

	// Database URLs
	PostgresURL string
	RedisURL    string

	// Worker pool
	WorkerCount int
	QueueSize   int
	JobTimeout  time.Duration

	// Scheduled recalculation
	StatsCron       string
	RunStatsOnStart bool

	// Banner policy table, embedded default when empty
	PolicyFile string

	// Auth
	APIKey        string
	SessionCookie string

	// Caching and limits
	ImportStatusTTL   time.Duration
	TierListCacheTTL  time.Duration
	MaxImportBodySize int64
}

// Load loads configuration from environment variables, after reading a
// .env file when one exists.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvInt("PORT", 8000),
		Env:             getEnv("ENV", "development"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		WorkerCount: getEnvInt("WORKER_COUNT", 4),
		QueueSize:   getEnvInt("QUEUE_SIZE", 10000),
		JobTimeout:  getEnvDuration("JOB_TIMEOUT", 2*time.Minute),

		StatsCron:       getEnv("STATS_CRON", "0 0 4 * * *"),
		RunStatsOnStart: getEnvBool("RUN_STATS_ON_START", false),

		PolicyFile: getEnv("POLICY_FILE", ""),

		APIKey:        getEnv("API_KEY", ""),
		SessionCookie: getEnv("SESSION_COOKIE", "id"),

		ImportStatusTTL:   getEnvDuration("IMPORT_STATUS_TTL", time.Hour),
		TierListCacheTTL:  getEnvDuration("TIER_LIST_CACHE_TTL", 5*time.Minute),
		MaxImportBodySize: int64(getEnvInt("MAX_IMPORT_BODY_SIZE", 32<<20)),
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
