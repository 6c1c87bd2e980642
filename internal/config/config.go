// Package config loads and validates environment variables at startup.
// Fail-fast: if a variable required by the selected store backend is
// missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Store backend names accepted in STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all runtime configuration for the jobboard service.
type Config struct {
	Port         string
	StoreBackend string
	RedisURL     string
	DatabaseURL  string

	// SeedURL is the canonical dataset fetched once when the store holds
	// no job list. Empty means no seed: the board starts with an empty
	// listing.
	SeedURL string

	// SweepIntervalHours drives the favorites integrity sweep.
	SweepIntervalHours int
}

// Load reads a .env file if present, then environment variables, and
// returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getenv("PORT", "8080"),
		StoreBackend:       getenv("STORE_BACKEND", BackendMemory),
		RedisURL:           os.Getenv("REDIS_URL"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SeedURL:            os.Getenv("SEED_URL"),
		SweepIntervalHours: 6,
	}

	if raw := os.Getenv("SWEEP_INTERVAL_HOURS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid SWEEP_INTERVAL_HOURS %q", raw)
		}
		cfg.SweepIntervalHours = n
	}

	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORE_BACKEND=redis")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
