package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

// UpstreamConfig points at the platform REST backend this frontend consumes.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PollerConfig controls the async job polling loops (EPUB verification,
// GDPR export).
type PollerConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

type SessionConfig struct {
	Secret    string
	CookieTTL time.Duration
	UserTTL   time.Duration // TTL for the cached authenticated-user object
}

type StripeConfig struct {
	SecretKey         string
	PayoutPercent     float64
	OnboardingBaseURL string
}

type Config struct {
	Repositories  RepositoriesConfig
	Upstream      UpstreamConfig
	Poller        PollerConfig
	Session       SessionConfig
	Stripe        StripeConfig
	ServerPort    string
	MetricsPort   string
	ShutdownGrace time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "workshelf"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 30,
				MinConns: 5,
			},
		},
		Upstream: UpstreamConfig{
			BaseURL: getEnvOrDefault("UPSTREAM_BASE_URL", ""),
			Timeout: getDurationOrDefault("UPSTREAM_TIMEOUT", 15*time.Second),
		},
		Poller: PollerConfig{
			Interval:    getDurationOrDefault("POLL_INTERVAL", 5*time.Second),
			MaxAttempts: getIntOrDefault("POLL_MAX_ATTEMPTS", 60),
		},
		Session: SessionConfig{
			Secret:    getEnvOrDefault("SESSION_SECRET", ""),
			CookieTTL: getDurationOrDefault("SESSION_COOKIE_TTL", 7*24*time.Hour),
			UserTTL:   getDurationOrDefault("SESSION_USER_TTL", 5*time.Minute),
		},
		Stripe: StripeConfig{
			SecretKey:         getEnvOrDefault("STRIPE_SECRET_KEY", ""),
			PayoutPercent:     getFloatOrDefault("STRIPE_PAYOUT_PERCENT", 90.0),
			OnboardingBaseURL: getEnvOrDefault("STRIPE_ONBOARDING_BASE_URL", "http://localhost:8090"),
		},
		ServerPort:    getEnvOrDefault("SERVER_PORT", "8090"),
		MetricsPort:   getEnvOrDefault("METRICS_PORT", "9092"),
		ShutdownGrace: getDurationOrDefault("SHUTDOWN_GRACE", 10*time.Second),
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL environment variable is required")
	}
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
