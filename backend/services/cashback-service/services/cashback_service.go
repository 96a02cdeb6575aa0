package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/models"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/repository"
	"github.com/Arpita030/deals-App/backend/services/common/outbox"
	"go.uber.org/zap"
)

const (
	notificationSubject = "🎉 Cashback Received!"
	notificationPrefix  = "Hi there,\n\nYou just received a cashback of ₹"
)

var (
	ErrMissingEmail   = errors.New("userEmail is required")
	ErrInvalidAmount  = errors.New("cashbackAmount must be a finite, non-negative number")
	ErrInvalidPayload = errors.New("invalid cashback payload")
)

type CashbackService interface {
	// HandleMessage decodes a queue body and applies it.
	HandleMessage(ctx context.Context, body string) error
	HandleCashbackEvent(ctx context.Context, msg events.CashbackMessage) error
	AddCashback(ctx context.Context, req models.AddCashbackRequest) (*models.Cashback, error)
	ListCashbacks(ctx context.Context, email string) ([]models.CashbackView, error)
	TotalCashback(ctx context.Context, email string) (float64, error)
	Summary(ctx context.Context, email string) (*models.CashbackSummary, error)
	Reconcile(ctx context.Context, email string) (*models.CashbackSummary, error)
}

type cashbackService struct {
	repo              repository.CashbackRepository
	notificationQueue string
	metrics           *awspkg.MetricsClient
	logger            *zap.Logger
	now               func() time.Time
}

func NewCashbackService(repo repository.CashbackRepository, notificationQueue string, metrics *awspkg.MetricsClient, logger *zap.Logger) CashbackService {
	if notificationQueue == "" {
		notificationQueue = events.NotificationQueue
	}
	return &cashbackService{
		repo:              repo,
		notificationQueue: notificationQueue,
		metrics:           metrics,
		logger:            logger,
		now:               time.Now,
	}
}

func (s *cashbackService) HandleMessage(ctx context.Context, body string) error {
	var msg events.CashbackMessage
	if err := json.Unmarshal([]byte(events.UnwrapSNS(body)), &msg); err != nil {
		return events.Permanent(fmt.Errorf("%w: %v", ErrInvalidPayload, err))
	}
	return s.HandleCashbackEvent(ctx, msg)
}

// HandleCashbackEvent validates msg and applies it. Validation failures are
// permanent; store failures are returned as-is so the message is redelivered.
func (s *cashbackService) HandleCashbackEvent(ctx context.Context, msg events.CashbackMessage) error {
	if err := validate(msg.UserEmail, msg.CashbackAmount); err != nil {
		s.logger.Warn("rejecting cashback event", zap.String("event_id", msg.EventID), zap.Error(err))
		return events.Permanent(err)
	}

	_, applied, err := s.apply(ctx, msg.UserEmail, msg.DealID, msg.CashbackAmount, msg.EventID)
	if err != nil {
		return err
	}
	if !applied {
		s.logger.Info("duplicate cashback event ignored",
			zap.String("event_id", msg.EventID),
			zap.String("user_email", msg.UserEmail),
		)
		s.count(ctx, awspkg.MetricCashbackDuplicate)
	}
	return nil
}

// AddCashback credits a user directly. Manual credits are never deduplicated.
func (s *cashbackService) AddCashback(ctx context.Context, req models.AddCashbackRequest) (*models.Cashback, error) {
	if err := validate(req.UserEmail, req.CashbackAmount); err != nil {
		return nil, err
	}
	rec, _, err := s.apply(ctx, req.UserEmail, req.DealID, req.CashbackAmount, "")
	return rec, err
}

func (s *cashbackService) apply(ctx context.Context, email string, dealID int64, amount float64, eventID string) (*models.Cashback, bool, error) {
	rec := &models.Cashback{
		UserEmail:      email,
		DealID:         dealID,
		CashbackAmount: amount,
		Timestamp:      s.now(),
	}

	note, err := outbox.NewMessage(email, s.notificationQueue, email, events.NotificationMessage{
		EventID:   notificationEventID(eventID),
		Recipient: email,
		Subject:   notificationSubject,
		Message:   notificationPrefix + events.FormatAmount(amount),
	})
	if err != nil {
		return nil, false, err
	}

	applied, err := s.repo.Apply(ctx, rec, eventID, note)
	if err != nil {
		s.logger.Error("failed to apply cashback",
			zap.String("user_email", email),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		return nil, false, err
	}
	if applied {
		s.logger.Info("cashback processed",
			zap.String("user_email", email),
			zap.Int64("deal_id", dealID),
			zap.Float64("amount", amount),
		)
		s.count(ctx, awspkg.MetricCashbackProcessed)
	}
	return rec, applied, nil
}

func notificationEventID(eventID string) string {
	if eventID == "" {
		return ""
	}
	return eventID + ":notification"
}

func validate(email string, amount float64) error {
	if strings.TrimSpace(email) == "" {
		return ErrMissingEmail
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}

func (s *cashbackService) ListCashbacks(ctx context.Context, email string) ([]models.CashbackView, error) {
	recs, err := s.repo.FindByUserEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	views := make([]models.CashbackView, 0, len(recs))
	for _, r := range recs {
		views = append(views, models.CashbackView{
			DealID:         r.DealID,
			CashbackAmount: r.CashbackAmount,
			Timestamp:      r.Timestamp,
		})
	}
	return views, nil
}

func (s *cashbackService) TotalCashback(ctx context.Context, email string) (float64, error) {
	return s.repo.SumByUserEmail(ctx, email)
}

func (s *cashbackService) Summary(ctx context.Context, email string) (*models.CashbackSummary, error) {
	return s.repo.FindSummary(ctx, email)
}

func (s *cashbackService) Reconcile(ctx context.Context, email string) (*models.CashbackSummary, error) {
	total, err := s.repo.Reconcile(ctx, email)
	if err != nil {
		return nil, err
	}
	s.logger.Info("cashback summary reconciled", zap.String("user_email", email), zap.Float64("total", total))
	return &models.CashbackSummary{UserEmail: email, TotalCashback: total}, nil
}

func (s *cashbackService) count(ctx context.Context, metric string) {
	_ = s.metrics.RecordCount(ctx, metric, map[string]string{"Service": "cashback-service"})
}
