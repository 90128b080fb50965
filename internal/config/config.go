// Package config provides configuration for the orchestrator.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the orchestrator configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Storage
	DatabaseURL string
	CacheDir    string

	// Sessions
	SessionTTL    time.Duration
	SweepInterval time.Duration

	// Payment gateway simulation
	PaymentSuccessRate float64
	PaymentMaxAttempts int
	PaymentBackoff     time.Duration

	// Reply generation backend. Empty ModelBaseURL selects the offline stub.
	ModelBaseURL string
	ModelAPIKey  string
	ModelName    string
	ModelTimeout time.Duration

	// Demo data
	SeedDemoData bool

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:           getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:        getEnv("DATABASE_URL", "file:omnichat.db?cache=shared&mode=rwc&_foreign_keys=1"),
		CacheDir:           getEnv("CACHE_DIR", ""),
		SessionTTL:         time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		SweepInterval:      time.Duration(getEnvInt("SWEEP_INTERVAL_MINUTES", 15)) * time.Minute,
		PaymentSuccessRate: getEnvFloat("PAYMENT_SUCCESS_RATE", 0.85),
		PaymentMaxAttempts: getEnvInt("PAYMENT_MAX_ATTEMPTS", 3),
		PaymentBackoff:     time.Duration(getEnvInt("PAYMENT_BACKOFF_MS", 500)) * time.Millisecond,
		ModelBaseURL:       getEnv("MODEL_BASE_URL", ""),
		ModelAPIKey:        getEnv("MODEL_API_KEY", ""),
		ModelName:          getEnv("MODEL_NAME", "gpt-4o-mini"),
		ModelTimeout:       time.Duration(getEnvInt("MODEL_TIMEOUT_MS", 30000)) * time.Millisecond,
		SeedDemoData:       getEnvBool("SEED_DEMO_DATA", true),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
