package main

import (
	"context"
	"os"
	"strconv"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/Arpita030/deals-App/backend/services/common/database"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the deal service.
type Config struct {
	Env           string
	Port          string
	DB            database.PostgresConfig
	JWTSecret     string
	RedisURL      string
	CacheTTL      time.Duration
	SweepInterval time.Duration
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8081"),
		DB:            database.ConfigFromEnv(),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisURL:      os.Getenv("REDIS_URL"),
		CacheTTL:      getDuration("DEAL_CACHE_TTL", 5*time.Minute),
		SweepInterval: getDuration("DEAL_EXPIRY_SWEEP_INTERVAL", time.Minute),
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if err := awspkg.ApplySecretOverrides(context.Background(), getEnv("DEAL_SECRET_NAME", "deals/deal-service"), map[string]*string{
			"POSTGRES_USER":     &cfg.DB.User,
			"POSTGRES_PASSWORD": &cfg.DB.Password,
			"POSTGRES_HOST":     &cfg.DB.Host,
			"JWT_SECRET":        &cfg.JWTSecret,
			"REDIS_URL":         &cfg.RedisURL,
		}); err != nil {
			return nil, err
		}
	}

	auth.SetSecret(cfg.JWTSecret)
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(os.Getenv(key)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
