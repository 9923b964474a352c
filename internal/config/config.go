// Package config centralizes runtime configuration. Values come from
// environment variables (FINLENS_*) with a .env file loaded first when
// present, so local development and production read the same knobs.
package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server settings
	ListenAddr string
	LogLevel   string

	// DatabasePath is the SQLite file. Empty means in-memory storage only,
	// which is what tests and quick local runs want.
	DatabasePath string

	// ExportDirectory receives JSON exports (optionally age-encrypted).
	ExportDirectory string

	// Analysis response cache
	CacheTTL time.Duration

	// Rate limiting across all endpoints
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// Load reads configuration from a .env file (if any) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	cfg := &Config{
		ListenAddr:         getEnv("FINLENS_LISTEN_ADDR", ":8080"),
		LogLevel:           getEnv("FINLENS_LOG_LEVEL", "info"),
		DatabasePath:       getEnv("FINLENS_DB_PATH", ""),
		ExportDirectory:    getEnv("FINLENS_EXPORT_DIR", filepath.Join(wd, "data", "exports")),
		CacheTTL:           getEnvAsDuration("FINLENS_CACHE_TTL", 5*time.Minute),
		RateLimitPerSecond: getEnvAsFloat("FINLENS_RATE_LIMIT", 50),
		RateLimitBurst:     getEnvAsInt("FINLENS_RATE_BURST", 100),
	}

	if err := os.MkdirAll(cfg.ExportDirectory, 0755); err != nil {
		log.Printf("Warning: could not create directory %s: %v", cfg.ExportDirectory, err)
	}

	return cfg
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer or returns a fallback.
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s (%q), using default: %d", key, valueStr, fallback)
	return fallback
}

// getEnvAsFloat retrieves an environment variable as a float or returns a fallback.
func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	log.Printf("Invalid numeric value for %s (%q), using default: %g", key, valueStr, fallback)
	return fallback
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a fallback.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s (%q), using default: %s", key, valueStr, fallback)
	return fallback
}
