package consumer

import (
	"context"
	"fmt"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/Arpita030/deals-App/backend/pkg/kafka"
	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"
)

const reconnectDelay = 5 * time.Second

const (
	BrokerSQS   = "sqs"
	BrokerKafka = "kafka"
)

// Handler has the contract shared by both transports: nil acknowledges,
// events.Permanent dead-letters, other errors are retried.
type Handler func(ctx context.Context, body string) error

type Config struct {
	Broker       string
	Queue        string // queue name, also the Kafka topic
	QueueURL     string // optional SQS override
	KafkaBrokers []string
	GroupID      string
	MaxAttempts  int
	Backoff      time.Duration
	Metrics      *awspkg.MetricsClient
}

// Run consumes cfg.Queue over the configured broker until ctx is cancelled.
func Run(ctx context.Context, awsCfg sdkaws.Config, cfg Config, handler Handler, logger *zap.Logger) error {
	switch cfg.Broker {
	case BrokerKafka:
		return restartOnError(ctx, func(ctx context.Context) error {
			c := kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers:     cfg.KafkaBrokers,
				GroupID:     cfg.GroupID,
				Topic:       cfg.Queue,
				MaxAttempts: cfg.MaxAttempts,
				Backoff:     cfg.Backoff,
				Metrics:     cfg.Metrics,
			}, logger)
			return c.Start(ctx, kafka.Handler(handler))
		}, reconnectDelay, logger)
	case BrokerSQS, "":
		queueURL := cfg.QueueURL
		if queueURL == "" {
			u, err := awspkg.EnsureQueue(ctx, awsCfg, cfg.Queue)
			if err != nil {
				return err
			}
			queueURL = u
		}
		dlqURL, err := awspkg.EnsureQueue(ctx, awsCfg, events.DeadLetterQueue(cfg.Queue))
		if err != nil {
			return err
		}
		c := awspkg.NewSQSConsumer(awsCfg, awspkg.ConsumerOptions{
			Source:             cfg.Queue,
			QueueURL:           queueURL,
			DeadLetterQueueURL: dlqURL,
			MaxReceiveCount:    cfg.MaxAttempts,
			Metrics:            cfg.Metrics,
		}, logger)
		return c.StartPolling(ctx, awspkg.MessageHandler(handler))
	default:
		return fmt.Errorf("unknown message broker %q", cfg.Broker)
	}
}

// restartOnError reruns start until ctx is cancelled. A fresh Kafka reader
// resumes from the group's last committed offset.
func restartOnError(ctx context.Context, start func(context.Context) error, delay time.Duration, logger *zap.Logger) error {
	for {
		err := start(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Error("consumer stopped, reconnecting", zap.Duration("delay", delay), zap.Error(err))
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
