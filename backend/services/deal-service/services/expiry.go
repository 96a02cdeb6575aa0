package services

import (
	"context"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"go.uber.org/zap"
)

// ExpirySweeper periodically switches off deals past their expiry date.
type ExpirySweeper struct {
	svc      DealService
	interval time.Duration
	metrics  *awspkg.MetricsClient
	logger   *zap.Logger
	now      func() time.Time
}

func NewExpirySweeper(svc DealService, interval time.Duration, metrics *awspkg.MetricsClient, logger *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{svc: svc, interval: interval, metrics: metrics, logger: logger, now: time.Now}
}

func (e *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.sweep(ctx)
		}
	}
}

func (e *ExpirySweeper) sweep(ctx context.Context) {
	n, err := e.svc.ExpireDeals(ctx, e.now())
	if err != nil {
		if ctx.Err() == nil {
			e.logger.Error("Deal expiry sweep failed", zap.Error(err))
		}
		return
	}
	if n > 0 && e.metrics.IsEnabled() {
		_ = e.metrics.RecordValue(ctx, awspkg.MetricDealsExpired, float64(n), map[string]string{"Service": "deal-service"})
	}
}
