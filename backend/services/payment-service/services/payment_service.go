package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/Arpita030/deals-App/backend/services/common/outbox"
	"github.com/Arpita030/deals-App/backend/services/payment-service/models"
	"github.com/Arpita030/deals-App/backend/services/payment-service/repository"
	"go.uber.org/zap"
)

const (
	paymentSubject      = "💳 Payment Received"
	paymentBodyTemplate = "💳 Payment received from: %s"
)

type PaymentService interface {
	ProcessPayment(ctx context.Context, txn *models.PaymentTransaction, bearer string) (*models.PaymentTransaction, error)
	Checkout(ctx context.Context, req models.CheckoutRequest, bearer string) (*models.PaymentTransaction, error)
	UserTransactions(ctx context.Context, email string) ([]models.PaymentTransaction, error)
	AllTransactions(ctx context.Context) ([]models.PaymentTransaction, error)
}

// Destinations names where payment events are sent. PaymentTopicARN is
// optional; when set every completed payment is also fanned out over SNS.
type Destinations struct {
	CashbackQueue     string
	NotificationQueue string
	PaymentTopicARN   string
}

type paymentService struct {
	repo    repository.PaymentRepository
	deals   DealLookup
	gateway PaymentGateway
	dest    Destinations
	logger  *zap.Logger
	now     func() time.Time
}

func NewPaymentService(repo repository.PaymentRepository, deals DealLookup, gateway PaymentGateway, dest Destinations, logger *zap.Logger) PaymentService {
	if dest.CashbackQueue == "" {
		dest.CashbackQueue = events.CashbackQueue
	}
	if dest.NotificationQueue == "" {
		dest.NotificationQueue = events.NotificationQueue
	}
	return &paymentService{
		repo:    repo,
		deals:   deals,
		gateway: gateway,
		dest:    dest,
		logger:  logger,
		now:     time.Now,
	}
}

// ProcessPayment validates the deal, then stores txn together with its
// notification and cashback events. Nothing is written if the deal check fails.
// A negative amount is rejected; an unparseable one is stored with 0 cashback.
func (s *paymentService) ProcessPayment(ctx context.Context, txn *models.PaymentTransaction, bearer string) (*models.PaymentTransaction, error) {
	if d, err := ParseAmount(txn.Amount); err == nil && d.IsNegative() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, txn.Amount)
	}
	if err := s.validateDeal(ctx, txn.DealID, bearer); err != nil {
		return nil, err
	}
	return s.record(ctx, txn)
}

func (s *paymentService) record(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	cashback, err := cashbackFor(txn.Amount)
	if err != nil {
		s.logger.Warn("invalid amount format for cashback, using 0",
			zap.String("transaction_id", txn.TransactionID),
			zap.String("amount", txn.Amount),
			zap.Error(err),
		)
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = s.now()
	}

	msgs, err := s.buildEvents(txn, cashback)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPublishFailure, err)
	}

	if err := s.repo.Save(ctx, txn, msgs...); err != nil {
		s.logger.Error("failed to persist payment",
			zap.String("transaction_id", txn.TransactionID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}

	s.logger.Info("payment recorded",
		zap.String("transaction_id", txn.TransactionID),
		zap.String("user_email", txn.UserEmail),
		zap.Int64("deal_id", txn.DealID),
		zap.Float64("cashback", cashback),
	)
	return txn, nil
}

func (s *paymentService) validateDeal(ctx context.Context, dealID int64, bearer string) error {
	deal, err := s.deals.GetDeal(ctx, dealID, bearer)
	if err != nil {
		s.logger.Warn("deal validation failed", zap.Int64("deal_id", dealID), zap.Error(err))
		return err
	}
	if !deal.Active {
		return fmt.Errorf("%w: id %d", ErrDealInactive, dealID)
	}
	return nil
}

func (s *paymentService) buildEvents(txn *models.PaymentTransaction, cashback float64) ([]outbox.Message, error) {
	notification, err := outbox.NewMessage(txn.TransactionID, s.dest.NotificationQueue, txn.UserEmail, events.NotificationMessage{
		EventID:   txn.TransactionID + ":payment-notification",
		Recipient: txn.UserEmail,
		Subject:   paymentSubject,
		Message:   fmt.Sprintf(paymentBodyTemplate, txn.UserEmail),
	})
	if err != nil {
		return nil, err
	}

	cashbackEvent := events.CashbackMessage{
		EventID:        txn.TransactionID + ":cashback",
		TransactionID:  txn.TransactionID,
		UserEmail:      txn.UserEmail,
		DealID:         txn.DealID,
		CashbackAmount: cashback,
	}
	cashbackMsg, err := outbox.NewMessage(txn.TransactionID, s.dest.CashbackQueue, txn.UserEmail, cashbackEvent)
	if err != nil {
		return nil, err
	}

	msgs := []outbox.Message{notification, cashbackMsg}
	if s.dest.PaymentTopicARN != "" {
		fanout, err := outbox.NewMessage(txn.TransactionID, s.dest.PaymentTopicARN, txn.UserEmail, txn)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, fanout)
	}
	return msgs, nil
}

// Checkout charges the gateway for a validated deal and records the payment.
func (s *paymentService) Checkout(ctx context.Context, req models.CheckoutRequest, bearer string) (*models.PaymentTransaction, error) {
	if strings.TrimSpace(req.Nonce) == "" {
		return nil, ErrMissingNonce
	}
	amount, err := ChargeableAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	// Charge only for deals that can be recorded.
	if err := s.validateDeal(ctx, req.DealID, bearer); err != nil {
		return nil, err
	}

	charge, err := s.gateway.Charge(ctx, amount, req.Nonce)
	if err != nil {
		s.logger.Warn("gateway charge failed", zap.String("user_email", req.UserEmail), zap.Error(err))
		if !errors.Is(err, ErrPaymentDeclined) {
			err = fmt.Errorf("%w: %v", ErrPaymentDeclined, err)
		}
		return nil, err
	}

	return s.record(ctx, &models.PaymentTransaction{
		TransactionID: charge.ID,
		UserEmail:     req.UserEmail,
		DealID:        req.DealID,
		Amount:        req.Amount,
		Status:        models.StatusSuccess,
		PaymentMethod: charge.PaymentMethod,
	})
}

func (s *paymentService) UserTransactions(ctx context.Context, email string) ([]models.PaymentTransaction, error) {
	return s.repo.FindByUserEmail(ctx, email)
}

func (s *paymentService) AllTransactions(ctx context.Context) ([]models.PaymentTransaction, error) {
	return s.repo.FindAll(ctx)
}
