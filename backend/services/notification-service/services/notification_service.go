package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/Arpita030/deals-App/backend/services/notification-service/models"
	"github.com/Arpita030/deals-App/backend/services/notification-service/repository"
	"github.com/Arpita030/deals-App/backend/services/notification-service/sender"
	"go.uber.org/zap"
)

const defaultSendAttempts = 3

var (
	ErrMissingRecipient = errors.New("notification has no recipient")
	ErrInvalidPayload   = errors.New("invalid notification payload")
)

type NotificationService interface {
	// HandleMessage decodes a queue body and delivers it.
	HandleMessage(ctx context.Context, body string) error
	Deliver(ctx context.Context, msg events.NotificationMessage) error
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

type Options struct {
	Attempts int
	Backoff  time.Duration
}

type notificationService struct {
	repo        repository.NotificationRepository
	emailSender sender.EmailSender
	metrics     *awspkg.MetricsClient
	logger      *zap.Logger
	attempts    int
	backoff     time.Duration
}

func NewNotificationService(
	repo repository.NotificationRepository,
	emailSender sender.EmailSender,
	metrics *awspkg.MetricsClient,
	logger *zap.Logger,
	opts Options,
) NotificationService {
	if opts.Attempts <= 0 {
		opts.Attempts = defaultSendAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &notificationService{
		repo:        repo,
		emailSender: emailSender,
		metrics:     metrics,
		logger:      logger,
		attempts:    opts.Attempts,
		backoff:     opts.Backoff,
	}
}

func (s *notificationService) HandleMessage(ctx context.Context, body string) error {
	var msg events.NotificationMessage
	if err := json.Unmarshal([]byte(events.UnwrapSNS(body)), &msg); err != nil {
		return events.Permanent(fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}
	return s.Deliver(ctx, msg)
}

// Deliver forwards msg verbatim to the email sender. A send that still fails
// after every attempt is returned so the queue redelivers the message.
func (s *notificationService) Deliver(ctx context.Context, msg events.NotificationMessage) error {
	if strings.TrimSpace(msg.Recipient) == "" {
		return events.Permanent(ErrMissingRecipient)
	}

	result, attempts, err := s.sendWithRetry(ctx, msg)

	entry := &models.NotificationLog{
		EventID:   msg.EventID,
		Recipient: msg.Recipient,
		Subject:   msg.Subject,
		Channel:   models.ChannelEmail,
		Status:    models.StatusSent,
		MessageID: result.MessageID,
		Attempts:  attempts,
	}
	if err != nil {
		entry.Status = models.StatusFailed
		entry.Error = err.Error()
	}
	if logErr := s.repo.SaveLog(ctx, entry); logErr != nil {
		s.logger.Error("failed to save notification log", zap.Error(logErr))
	}

	if err != nil {
		s.logger.Error("notification delivery failed",
			zap.String("recipient", msg.Recipient),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		s.count(ctx, awspkg.MetricNotificationFailed)
		return fmt.Errorf("send email to %s: %w", msg.Recipient, err)
	}

	s.logger.Info("notification sent",
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject),
		zap.String("message_id", result.MessageID),
	)
	s.count(ctx, awspkg.MetricNotificationSent)
	return nil
}

func (s *notificationService) sendWithRetry(ctx context.Context, msg events.NotificationMessage) (sender.SendResult, int, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return sender.SendResult{}, attempt - 1, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * s.backoff):
			}
		}

		result, err := s.emailSender.SendEmail(ctx, msg.Recipient, msg.Subject, msg.Message)
		if err == nil {
			return result, attempt, nil
		}
		lastErr = err
		s.logger.Warn("send attempt failed",
			zap.String("recipient", msg.Recipient),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return sender.SendResult{}, s.attempts, lastErr
}

func (s *notificationService) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	return s.repo.GetLogs(ctx, filter)
}

func (s *notificationService) count(ctx context.Context, metric string) {
	_ = s.metrics.RecordCount(ctx, metric, map[string]string{"Service": "notification-service"})
}
