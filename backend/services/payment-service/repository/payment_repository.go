package repository

import (
	"context"

	"github.com/Arpita030/deals-App/backend/services/common/outbox"
	"github.com/Arpita030/deals-App/backend/services/payment-service/models"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	// Save stores txn and its outbox messages atomically.
	Save(ctx context.Context, txn *models.PaymentTransaction, msgs ...outbox.Message) error
	FindByUserEmail(ctx context.Context, email string) ([]models.PaymentTransaction, error)
	FindAll(ctx context.Context) ([]models.PaymentTransaction, error)
}

type gormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) PaymentRepository {
	return &gormPaymentRepo{db: db}
}

func (r *gormPaymentRepo) Save(ctx context.Context, txn *models.PaymentTransaction, msgs ...outbox.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(txn).Error; err != nil {
			return err
		}
		return outbox.Enqueue(tx, msgs...)
	})
}

func (r *gormPaymentRepo) FindByUserEmail(ctx context.Context, email string) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	err := r.db.WithContext(ctx).Where("user_email = ?", email).Order("created_at desc").Find(&txns).Error
	return txns, err
}

func (r *gormPaymentRepo) FindAll(ctx context.Context) ([]models.PaymentTransaction, error) {
	var txns []models.PaymentTransaction
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&txns).Error
	return txns, err
}
