package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Auth
	JWTSecret string

	// Storage
	StorageURL    string
	StorageKey    string
	StorageBucket string

	// Messaging
	AMQPURL string

	// Payment
	PaymentAPIBaseURL string
	PaymentAPIKey     string

	// Background expiry sweep. Disabled when zero.
	SweepIntervalSeconds int

	// Server
	Port        string
	Environment string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		StorageURL:    getEnv("STORAGE_URL", ""),
		StorageKey:    getEnv("STORAGE_KEY", ""),
		StorageBucket: getEnv("STORAGE_BUCKET", "order-images"),

		AMQPURL: getEnv("AMQP_URL", ""),

		PaymentAPIBaseURL: getEnv("PAYMENT_API_BASE_URL", ""),
		PaymentAPIKey:     getEnv("PAYMENT_API_KEY", ""),

		SweepIntervalSeconds: getEnvInt("SWEEP_INTERVAL_SECONDS", 0),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
