package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	Environment              string
	DataDir                  string
	StorageQuotaBytes        int64
	JWTSecret                string
	SessionExpirationMinutes int
	SeedOnFirstRun           bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// 5 MiB default quota, the budget browsers give localStorage.
	quota, err := strconv.ParseInt(getEnv("STORAGE_QUOTA_BYTES", "5242880"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STORAGE_QUOTA_BYTES: %w", err)
	}

	sessionExpiration, err := strconv.Atoi(getEnv("SESSION_EXPIRATION_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_EXPIRATION_MINUTES: %w", err)
	}

	seed, err := strconv.ParseBool(getEnv("SEED_ON_FIRST_RUN", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEED_ON_FIRST_RUN: %w", err)
	}

	return &Config{
		Environment:              getEnv("APP_ENV", "development"),
		DataDir:                  getEnv("DATA_DIR", "data"),
		StorageQuotaBytes:        quota,
		JWTSecret:                getEnv("JWT_SECRET", "default_jwt_secret"),
		SessionExpirationMinutes: sessionExpiration,
		SeedOnFirstRun:           seed,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
