package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/Arpita030/deals-App/backend/services/common/consumer"
	"github.com/Arpita030/deals-App/backend/services/common/database"
	"github.com/joho/godotenv"
)

type Config struct {
	Env              string
	Port             string
	DB               database.PostgresConfig
	JWTSecret        string
	MessageBroker    string
	KafkaBrokers     []string
	ConsumerGroup    string
	CashbackQueueURL string
	MaxReceiveCount  int
	OutboxInterval   time.Duration
	OutboxBatchSize  int
	OutboxMaxAttempt int
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8088"),
		DB:               database.ConfigFromEnv(),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		MessageBroker:    strings.ToLower(getEnv("MESSAGE_BROKER", consumer.BrokerSQS)),
		KafkaBrokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		ConsumerGroup:    getEnv("KAFKA_GROUP_ID", "cashback-service"),
		CashbackQueueURL: os.Getenv("CASHBACK_QUEUE_URL"),
		MaxReceiveCount:  getInt("MAX_RECEIVE_COUNT", 5),
		OutboxInterval:   getDuration("OUTBOX_POLL_INTERVAL", time.Second),
		OutboxBatchSize:  getInt("OUTBOX_BATCH_SIZE", 50),
		OutboxMaxAttempt: getInt("OUTBOX_MAX_ATTEMPTS", 10),
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if err := awspkg.ApplySecretOverrides(context.Background(), getEnv("CASHBACK_SECRET_NAME", "deals/cashback-service"), map[string]*string{
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

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}
