package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DatastoreProjectID  string
	DatastoreNamespace  string
	DatastoreDatabaseID string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Redis points cache configuration.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisEnabled   bool
	PointsCacheTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := time.ParseDuration(envOrDefault("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}

	cacheTTL, err := time.ParseDuration(envOrDefault("POINTS_CACHE_TTL", "5m"))
	if err != nil || cacheTTL <= 0 {
		return nil, errors.New("invalid POINTS_CACHE_TTL")
	}

	redisDB, err := strconv.Atoi(envOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return nil, errors.New("invalid REDIS_DB")
	}

	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	redisEnabled := redisAddr != ""
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		redisEnabled = v == "true"
	}

	cfg := &Config{
		DatastoreProjectID:  envOrDefault("DATASTORE_PROJECT_ID", "noaarain"),
		DatastoreNamespace:  os.Getenv("DATASTORE_NAMESPACE"),
		DatastoreDatabaseID: os.Getenv("DATASTORE_DATABASE_ID"),
		HTTPAddr:            httpAddr(),
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:     shutdownTimeout,

		RedisAddr:      redisAddr,
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		RedisEnabled:   redisEnabled,
		PointsCacheTTL: cacheTTL,
	}

	if cfg.DatastoreProjectID == "" {
		return nil, errors.New("DATASTORE_PROJECT_ID is required")
	}
	if cfg.RedisEnabled && cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ENABLED is true but REDIS_ADDR is not set")
	}

	return cfg, nil
}

// httpAddr honors HTTP_ADDR first, then the PORT convention of managed runtimes.
func httpAddr() string {
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		return v
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + port
	}
	return ":8080"
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
