// Package config loads application configuration from environment
// variables, with an optional .env file for development.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Driver identifies a persistence backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string
	UserID   string

	// Store
	StoreDriver Driver
	DatabaseURL string
	SQLitePath  string

	// Settings cache
	RedisURL    string
	SettingsTTL time.Duration

	// Cross-process change sync (SQLite backend only)
	AMQPURL string
}

// Load loads configuration from environment variables. A .env file is
// honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		UserID:   getEnv("TASKDECK_USER_ID", "00000000-0000-0000-0000-000000000001"),

		StoreDriver: Driver(getEnv("TASKDECK_STORE_DRIVER", "auto")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("TASKDECK_DB_PATH", ""),

		RedisURL:    getEnv("REDIS_URL", ""),
		SettingsTTL: getDurationEnv("TASKDECK_SETTINGS_TTL", time.Hour),

		AMQPURL: getEnv("AMQP_URL", ""),
	}

	if cfg.StoreDriver == "auto" || cfg.StoreDriver == "" {
		cfg.StoreDriver = DetectDriver(cfg.DatabaseURL)
	}

	return cfg, nil
}

// DetectDriver picks a backend from the database URL: a postgres URL
// selects the postgres store, anything else falls back to SQLite.
func DetectDriver(url string) Driver {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}
	return DriverSQLite
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
