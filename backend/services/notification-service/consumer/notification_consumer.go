package consumer

import (
	"context"

	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/Arpita030/deals-App/backend/services/notification-service/services"
	"go.uber.org/zap"
)

// NotificationConsumer feeds notification-queue messages to the service.
type NotificationConsumer struct {
	service services.NotificationService
	logger  *zap.Logger
}

func NewNotificationConsumer(svc services.NotificationService, logger *zap.Logger) *NotificationConsumer {
	return &NotificationConsumer{service: svc, logger: logger}
}

func (c *NotificationConsumer) Handle(ctx context.Context, body string) error {
	if body == "" {
		return events.Permanent(services.ErrInvalidPayload)
	}
	err := c.service.HandleMessage(ctx, body)
	if err != nil && events.IsPermanent(err) {
		c.logger.Error("notification message rejected", zap.String("payload", body), zap.Error(err))
	}
	return err
}
