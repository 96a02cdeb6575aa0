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

// Config holds all configuration for the user service.
type Config struct {
	Env            string
	Port           string
	DB             database.PostgresConfig
	JWTSecret      string
	TokenTTL       time.Duration
	AuthRatePerMin int
	AuthRateBurst  int
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8085"),
		DB:             database.ConfigFromEnv(),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       10 * time.Hour,
		AuthRatePerMin: getInt("AUTH_RATE_LIMIT_PER_MINUTE", 30),
		AuthRateBurst:  getInt("AUTH_RATE_LIMIT_BURST", 10),
	}
	if d, err := time.ParseDuration(os.Getenv("JWT_TTL")); err == nil && d > 0 {
		cfg.TokenTTL = d
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if err := awspkg.ApplySecretOverrides(context.Background(), getEnv("USER_SECRET_NAME", "deals/user-service"), map[string]*string{
			"POSTGRES_USER":     &cfg.DB.User,
			"POSTGRES_PASSWORD": &cfg.DB.Password,
			"POSTGRES_HOST":     &cfg.DB.Host,
			"JWT_SECRET":        &cfg.JWTSecret,
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

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}
