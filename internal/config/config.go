// Package config loads the application configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string

	// LogDir enables session log files next to stdout; empty disables them.
	LogDir string

	// APIKey protects the HTTP API; empty disables authentication.
	APIKey         string
	TrustedProxies []string

	// DatabaseURL selects the postgres backend; empty runs fully in memory.
	DatabaseURL string

	QueueCapacity int
	WorkerCount   int

	HistoryFetchLimit  int
	EventRetentionDays int

	LeaderboardCacheSize int
	LeaderboardCacheTTL  time.Duration

	CatalogPath string
	RulesPath   string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", EnvDev),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		LogDir:      getEnv("LOG_DIR", ""),
		APIKey:      getEnv("API_KEY", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CatalogPath: getEnv("CATALOG_PATH", DefaultCatalogPath),
		RulesPath:   getEnv("RULES_PATH", DefaultRulesPath),
	}
	if raw := getEnv("TRUSTED_PROXIES", ""); raw != "" {
		for _, proxy := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(proxy); trimmed != "" {
				cfg.TrustedProxies = append(cfg.TrustedProxies, trimmed)
			}
		}
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.QueueCapacity, err = getEnvInt("QUEUE_CAPACITY", 10000); err != nil {
		return nil, err
	}
	if cfg.WorkerCount, err = getEnvInt("WORKER_COUNT", 4); err != nil {
		return nil, err
	}
	if cfg.HistoryFetchLimit, err = getEnvInt("HISTORY_FETCH_LIMIT", 1000); err != nil {
		return nil, err
	}
	if cfg.EventRetentionDays, err = getEnvInt("EVENT_RETENTION_DAYS", 90); err != nil {
		return nil, err
	}
	if cfg.LeaderboardCacheSize, err = getEnvInt("LEADERBOARD_CACHE_SIZE", 256); err != nil {
		return nil, err
	}

	ttlSeconds, err := getEnvInt("LEADERBOARD_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cfg.LeaderboardCacheTTL = time.Duration(ttlSeconds) * time.Second

	if cfg.QueueCapacity <= 0 {
		return nil, fmt.Errorf("QUEUE_CAPACITY must be positive, got %d", cfg.QueueCapacity)
	}
	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("WORKER_COUNT must be positive, got %d", cfg.WorkerCount)
	}
	if cfg.EventRetentionDays <= 0 {
		return nil, fmt.Errorf("EVENT_RETENTION_DAYS must be positive, got %d", cfg.EventRetentionDays)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}
