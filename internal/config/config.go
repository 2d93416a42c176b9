// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/splitwiser/pkg/logging"
)

// defaultJWTSecret is only acceptable for local development.
const defaultJWTSecret = "dev-secret-change-me"

type Config struct {
	// HTTP Server
	Port int

	// Database
	DBPath string

	// Auth
	JWTSecret     string
	TokenDuration time.Duration

	// Kafka ledger events; publishing is disabled when no brokers are set.
	KafkaBrokers []string
	KafkaTopic   string

	// Observability
	LogLevel       string
	MetricsEnabled bool

	// Environment is "development" or "production".
	Environment string
}

// Load reads a .env file from the working directory when present, then
// builds the configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() *Config {
	return &Config{
		Port:   getEnvInt("PORT", 8080),
		DBPath: getEnv("DB_PATH", "./data/splitwiser.db"),

		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		TokenDuration: getEnvDuration("TOKEN_DURATION", 24*time.Hour),

		KafkaBrokers: getEnvList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "splitwiser.ledger"),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),

		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Port))
	}
	if c.DBPath == "" {
		errs = append(errs, "database path cannot be empty")
	}
	if c.JWTSecret == "" {
		errs = append(errs, "JWT secret cannot be empty")
	}
	if c.Environment == "production" && c.JWTSecret == defaultJWTSecret {
		errs = append(errs, "JWT_SECRET must be set in production")
	}
	if c.TokenDuration < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token duration %v: must be at least 1 minute", c.TokenDuration))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, "Kafka topic cannot be empty when brokers are configured")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	return logging.ParseLevel(c.LogLevel)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
