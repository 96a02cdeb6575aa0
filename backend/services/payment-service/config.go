package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/Arpita030/deals-App/backend/services/common/database"
	"github.com/joho/godotenv"
)

const (
	brokerSQS   = "sqs"
	brokerKafka = "kafka"
)

type Config struct {
	Env              string
	Port             string
	DB               database.PostgresConfig
	JWTSecret        string
	DealServiceURL   string
	DealTimeout      time.Duration
	StripeSecretKey  string
	Currency         string
	MessageBroker    string
	KafkaBrokers     []string
	PaymentTopicARN  string
	OutboxInterval   time.Duration
	OutboxBatchSize  int
	OutboxMaxAttempt int
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8087"),
		DB:               database.ConfigFromEnv(),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		DealServiceURL:   getEnv("DEAL_SERVICE_URL", "http://localhost:8081"),
		DealTimeout:      getDuration("DEAL_SERVICE_TIMEOUT", 5*time.Second),
		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		Currency:         getEnv("PAYMENT_CURRENCY", "inr"),
		MessageBroker:    strings.ToLower(getEnv("MESSAGE_BROKER", brokerSQS)),
		KafkaBrokers:     splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		PaymentTopicARN:  os.Getenv("PAYMENT_SNS_TOPIC_ARN"),
		OutboxInterval:   getDuration("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:  getInt("OUTBOX_BATCH_SIZE", 50),
		OutboxMaxAttempt: getInt("OUTBOX_MAX_ATTEMPTS", 10),
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if err := awspkg.ApplySecretOverrides(context.Background(), getEnv("PAYMENT_SECRET_NAME", "deals/payment-service"), map[string]*string{
			"POSTGRES_USER":     &cfg.DB.User,
			"POSTGRES_PASSWORD": &cfg.DB.Password,
			"POSTGRES_HOST":     &cfg.DB.Host,
			"JWT_SECRET":        &cfg.JWTSecret,
			"STRIPE_SECRET_KEY": &cfg.StripeSecretKey,
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

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
