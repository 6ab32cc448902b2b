package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Storage backend selectors.
const (
	BackendPostgres = "postgres"
	BackendBadger   = "badger"
)

// Config holds all application configuration
type Config struct {
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"badger"`

	// Postgres connection (used when STORAGE_BACKEND=postgres)
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:""`
	DBName     string `env:"DB_NAME" envDefault:"megasena"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Badger directory (used when STORAGE_BACKEND=badger)
	BadgerDir string `env:"BADGER_DIR" envDefault:"./data"`

	// Upstream results API
	APIBaseURL      string `env:"API_BASE_URL" envDefault:""`
	RequestTimeout  int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec  int    `env:"REQUESTS_PER_SEC" envDefault:"5"`
	MaxRetrySeconds int    `env:"MAX_RETRY_SECONDS" envDefault:"60"`

	// Analysis defaults
	WindowDays   int `env:"WINDOW_DAYS" envDefault:"365"`
	BacktestRuns int `env:"BACKTEST_RUNS" envDefault:"100"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Telegram bot (used by cmd/tgbot only)
	TelegramToken string `env:"TELEGRAM_TOKEN" envDefault:"-"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.StorageBackend = getEnvWithDefault("STORAGE_BACKEND", BackendBadger)
	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvIntWithDefault("DB_PORT", 5432)
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "megasena")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")
	cfg.BadgerDir = getEnvWithDefault("BADGER_DIR", "./data")
	cfg.APIBaseURL = os.Getenv("API_BASE_URL")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetrySeconds = getEnvIntWithDefault("MAX_RETRY_SECONDS", 60)
	cfg.WindowDays = getEnvIntWithDefault("WINDOW_DAYS", 365)
	cfg.BacktestRuns = getEnvIntWithDefault("BACKTEST_RUNS", 100)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	switch cfg.StorageBackend {
	case BackendPostgres, BackendBadger:
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
