package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	Port            string
	JWTSecret       string
	AllowedOrigins  []string
	UpstreamTimeout time.Duration
	RatePerMinute   int
	RateBurst       int
	Upstreams       Upstreams
}

// Upstreams holds the base URL of every proxied service.
type Upstreams struct {
	User         string
	Deal         string
	Payment      string
	Cashback     string
	Notification string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AllowedOrigins:  strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		RatePerMinute:   getInt("GATEWAY_RATE_PER_MINUTE", 300),
		RateBurst:       getInt("GATEWAY_RATE_BURST", 50),
		Upstreams: Upstreams{
			User:         getEnv("USER_SERVICE_URL", "http://user-service:8085"),
			Deal:         getEnv("DEAL_SERVICE_URL", "http://deal-service:8081"),
			Payment:      getEnv("PAYMENT_SERVICE_URL", "http://payment-service:8087"),
			Cashback:     getEnv("CASHBACK_SERVICE_URL", "http://cashback-service:8088"),
			Notification: getEnv("NOTIFICATION_SERVICE_URL", "http://notification-service:8089"),
		},
	}

	auth.SetSecret(cfg.JWTSecret)
	return cfg
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}
