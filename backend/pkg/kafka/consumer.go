package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const maxDLQBackoff = 30 * time.Second

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one message value. It follows the same contract as the
// SQS handler: nil commits, events.Permanent dead-letters, anything else is
// retried.
type Handler func(ctx context.Context, body string) error

// ConsumerConfig configures a Consumer.
type ConsumerConfig struct {
	Brokers     []string
	GroupID     string
	Topic       string
	MaxAttempts int
	Backoff     time.Duration
	Metrics     *awspkg.MetricsClient
}

// Consumer reads one topic as part of a consumer group and commits offsets
// only after a message is handled or dead-lettered.
type Consumer struct {
	reader      messageReader
	dlq         messageWriter
	topic       string
	maxAttempts int
	backoff     time.Duration
	metrics     *awspkg.MetricsClient
	logger      *zap.Logger
}

func NewConsumer(cfg ConsumerConfig, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.GroupID,
		Topic:             cfg.Topic,
		MinBytes:          1,
		MaxBytes:          10e6,
		HeartbeatInterval: 3 * time.Second,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...))
		}),
	})
	dlq := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  events.DeadLetterQueue(cfg.Topic),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newConsumer(reader, dlq, cfg, logger)
}

func newConsumer(reader messageReader, dlq messageWriter, cfg ConsumerConfig, logger *zap.Logger) *Consumer {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &Consumer{
		reader:      reader,
		dlq:         dlq,
		topic:       cfg.Topic,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		metrics:     cfg.Metrics,
		logger:      logger,
	}
}

// Start consumes until ctx is cancelled, then closes the reader.
func (c *Consumer) Start(ctx context.Context, handler Handler) error {
	c.logger.Info("kafka consumer started", zap.String("topic", c.topic))
	defer func() {
		_ = c.reader.Close()
		_ = c.dlq.Close()
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("kafka consumer stopped", zap.String("topic", c.topic))
				return ctx.Err()
			}
			c.logger.Error("failed to fetch message", zap.String("topic", c.topic), zap.Error(err))
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}

		// A group reader never refetches a skipped message and a later commit
		// would move past it, so an unresolved message stops the consumer.
		if err := c.process(ctx, msg, handler); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Error("message left uncommitted, stopping consumer",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit offset",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// process returns nil when the message may be committed.
func (c *Consumer) process(ctx context.Context, msg kafka.Message, handler Handler) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = handler(ctx, string(msg.Value))
		if lastErr == nil {
			return nil
		}
		if events.IsPermanent(lastErr) {
			return c.deadLetter(ctx, msg, lastErr, attempt)
		}

		c.logger.Warn("message processing failed",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt < c.maxAttempts && !sleep(ctx, time.Duration(attempt)*c.backoff) {
			return ctx.Err()
		}
	}
	return c.deadLetter(ctx, msg, lastErr, c.maxAttempts)
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, reason error, attempts int) error {
	body, err := events.NewDeadLetter(c.topic, string(msg.Value), reason, attempts)
	if err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		err := c.dlq.WriteMessages(ctx, kafka.Message{Key: msg.Key, Value: body})
		if err == nil {
			break
		}
		c.logger.Error("failed to write dead letter",
			zap.String("topic", c.topic),
			zap.Int64("offset", msg.Offset),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if !sleep(ctx, dlqBackoff(c.backoff, attempt)) {
			return fmt.Errorf("failed to write dead letter: %w", ctx.Err())
		}
	}
	c.logger.Warn("message dead-lettered",
		zap.String("topic", c.topic),
		zap.Int64("offset", msg.Offset),
		zap.Int("attempts", attempts),
		zap.Error(reason),
	)
	_ = c.metrics.RecordCount(ctx, awspkg.MetricDeadLettered, map[string]string{"Queue": c.topic})
	return nil
}

// dlqBackoff grows linearly with the attempt and is capped at maxDLQBackoff.
func dlqBackoff(base time.Duration, attempt int) time.Duration {
	d := time.Duration(attempt) * base
	if d > maxDLQBackoff {
		return maxDLQBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
