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
	"github.com/Arpita030/deals-App/backend/services/notification-service/sender"
	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	Port            string
	DB              database.PostgresConfig
	JWTSecret       string
	SMTP            sender.SMTPConfig
	SendAttempts    int
	SendBackoff     time.Duration
	MessageBroker   string
	KafkaBrokers    []string
	ConsumerGroup   string
	QueueURL        string
	MaxReceiveCount int
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "8089"),
		DB:        database.ConfigFromEnv(),
		JWTSecret: os.Getenv("JWT_SECRET"),
		SMTP: sender.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
		SendAttempts:    getInt("NOTIFICATION_SEND_ATTEMPTS", 3),
		SendBackoff:     getDuration("NOTIFICATION_SEND_BACKOFF", time.Second),
		MessageBroker:   strings.ToLower(getEnv("MESSAGE_BROKER", consumer.BrokerSQS)),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		ConsumerGroup:   getEnv("KAFKA_GROUP_ID", "notification-service"),
		QueueURL:        getEnv("NOTIFICATION_QUEUE_URL", os.Getenv("SQS_QUEUE_URL")),
		MaxReceiveCount: getInt("MAX_RECEIVE_COUNT", 5),
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if err := awspkg.ApplySecretOverrides(context.Background(), getEnv("NOTIFICATION_SECRET_NAME", "deals/notification-service"), map[string]*string{
			"POSTGRES_USER":     &cfg.DB.User,
			"POSTGRES_PASSWORD": &cfg.DB.Password,
			"POSTGRES_HOST":     &cfg.DB.Host,
			"JWT_SECRET":        &cfg.JWTSecret,
			"SMTP_PASS":         &cfg.SMTP.Password,
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
