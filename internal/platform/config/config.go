// Package config centralizes the environment variables used by the binaries.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config aggregates every parameter the API and worker need.
type Config struct {
	HTTPAddress string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ViewQueueKey   string
	ViewCounterKey string

	RateLimitEnabled       bool
	RateLimitMaxVotes      int
	RateLimitWindowSeconds int
	RateLimitKeyPrefix     string

	ModerationEnabled bool

	AdminUsername string
	AdminPassword string
	AdminSecret   string

	AutoMigrate bool

	WorkerMetricsAddress string
	ReconcileSeconds     int
}

func Load() (Config, error) {
	// Defaults favor local runs; environment overrides cover Docker/K8s.
	cfg := Config{
		HTTPAddress:            getEnv("HTTP_ADDRESS", ":8080"),
		PostgresHost:           getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:           getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:           getEnv("POSTGRES_USER", "letsettle"),
		PostgresPassword:       getEnv("POSTGRES_PASSWORD", "letsettle"),
		PostgresDB:             getEnv("POSTGRES_DB", "letsettle"),
		PostgresSSLMode:        getEnv("POSTGRES_SSLMODE", "disable"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		ViewQueueKey:           getEnv("REDIS_VIEW_QUEUE", "queue:views"),
		ViewCounterKey:         getEnv("REDIS_VIEW_COUNTER_PREFIX", "views"),
		RateLimitEnabled:       getEnvAsBool("RATE_LIMIT_ENABLED", true),
		RateLimitMaxVotes:      getEnvAsInt("RATE_LIMIT_MAX", 30),
		RateLimitWindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitKeyPrefix:     getEnv("RATE_LIMIT_PREFIX", "ratelimit"),
		ModerationEnabled:      getEnvAsBool("MODERATION_ENABLED", true),
		AdminUsername:          getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:          os.Getenv("ADMIN_PASSWORD"),
		AdminSecret:            os.Getenv("ADMIN_SECRET"),
		AutoMigrate:            getEnvAsBool("DB_AUTO_MIGRATE", true),
		WorkerMetricsAddress:   getEnv("WORKER_METRICS_ADDRESS", ":9090"),
		ReconcileSeconds:       getEnvAsInt("RECONCILE_INTERVAL", 300),
	}

	dbStr := getEnv("REDIS_DB", "0")
	dbInt, err := strconv.Atoi(dbStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid REDIS_DB: %w", err)
	}
	cfg.RedisDB = dbInt

	return cfg, nil
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch value {
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return true
	}
}
