package outbox

import (
	"context"
	"fmt"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Publisher delivers a payload to a queue or topic. key groups messages that
// must stay ordered, e.g. by user.
type Publisher interface {
	Publish(ctx context.Context, destination, key string, payload []byte) error
}

// Router sends SNS topic ARNs to Topics and everything else to Queues.
type Router struct {
	Queues Publisher
	Topics Publisher
}

func (r Router) Publish(ctx context.Context, destination, key string, payload []byte) error {
	if awspkg.IsTopicARN(destination) {
		if r.Topics == nil {
			return fmt.Errorf("no topic publisher configured for %s", destination)
		}
		return r.Topics.Publish(ctx, destination, key, payload)
	}
	if r.Queues == nil {
		return fmt.Errorf("no queue publisher configured for %s", destination)
	}
	return r.Queues.Publish(ctx, destination, key, payload)
}

type RelayConfig struct {
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Relay polls the outbox table and publishes pending rows.
type Relay struct {
	db        *gorm.DB
	publisher Publisher
	metrics   *awspkg.MetricsClient
	logger    *zap.Logger
	cfg       RelayConfig
}

func NewRelay(db *gorm.DB, publisher Publisher, metrics *awspkg.MetricsClient, logger *zap.Logger, cfg RelayConfig) *Relay {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &Relay{db: db, publisher: publisher, metrics: metrics, logger: logger, cfg: cfg}
}

// Run flushes on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("outbox relay started", zap.Duration("interval", r.cfg.Interval))
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("outbox flush failed", zap.Error(err))
			}
		}
	}
}

// Flush publishes one batch and returns how many rows were sent.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	sent := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batch, err := claimPending(tx, r.cfg.BatchSize, r.cfg.MaxAttempts)
		if err != nil {
			return err
		}

		for _, m := range batch {
			if pubErr := r.publisher.Publish(ctx, m.Destination, m.PartitionKey, m.Payload); pubErr != nil {
				r.logger.Warn("outbox publish failed",
					zap.String("id", m.ID.String()),
					zap.String("destination", m.Destination),
					zap.Int("attempts", m.Attempts+1),
					zap.Error(pubErr),
				)
				r.count(ctx, awspkg.MetricOutboxFailed, m.Destination)
				if err := markFailed(tx, m, pubErr, r.cfg.MaxAttempts); err != nil {
					return fmt.Errorf("failed to record outbox failure: %w", err)
				}
				continue
			}

			if err := markSent(tx, m.ID, time.Now()); err != nil {
				return fmt.Errorf("failed to mark outbox message sent: %w", err)
			}
			r.count(ctx, awspkg.MetricOutboxPublished, m.Destination)
			sent++
		}
		return nil
	})
	return sent, err
}

func (r *Relay) count(ctx context.Context, metric, destination string) {
	if !r.metrics.IsEnabled() {
		return
	}
	_ = r.metrics.RecordCount(ctx, metric, map[string]string{"Destination": destination})
}
