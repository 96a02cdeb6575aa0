package consumer

import (
	"context"
	"time"

	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/services"
	"go.uber.org/zap"
)

// CashbackConsumer feeds cashback-queue messages to the cashback service.
type CashbackConsumer struct {
	service services.CashbackService
	logger  *zap.Logger
}

func NewCashbackConsumer(svc services.CashbackService, logger *zap.Logger) *CashbackConsumer {
	return &CashbackConsumer{service: svc, logger: logger}
}

// Handle processes one message body.
func (c *CashbackConsumer) Handle(ctx context.Context, body string) error {
	start := time.Now()
	err := c.service.HandleMessage(ctx, body)
	switch {
	case err == nil:
		c.logger.Debug("cashback message handled", zap.Duration("took", time.Since(start)))
	case events.IsPermanent(err):
		c.logger.Error("cashback message rejected", zap.String("payload", body), zap.Error(err))
	default:
		c.logger.Warn("cashback message failed, will retry", zap.Error(err))
	}
	return err
}
