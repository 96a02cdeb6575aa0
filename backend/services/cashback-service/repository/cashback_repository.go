package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Arpita030/deals-App/backend/services/cashback-service/models"
	"github.com/Arpita030/deals-App/backend/services/common/outbox"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CashbackRepository interface {
	// Apply records rec, adds it to the user's summary and enqueues msgs in
	// one transaction. With a non-empty eventID it returns false, and changes
	// nothing, when that event was already applied.
	Apply(ctx context.Context, rec *models.Cashback, eventID string, msgs ...outbox.Message) (bool, error)
	FindByUserEmail(ctx context.Context, email string) ([]models.Cashback, error)
	SumByUserEmail(ctx context.Context, email string) (float64, error)
	FindSummary(ctx context.Context, email string) (*models.CashbackSummary, error)
	// Reconcile rewrites the summary as the sum of the user's records.
	Reconcile(ctx context.Context, email string) (float64, error)
}

type gormCashbackRepo struct {
	db *gorm.DB
}

func NewGormCashbackRepo(db *gorm.DB) CashbackRepository {
	return &gormCashbackRepo{db: db}
}

// normalizeEmail is applied on every write and lookup so addresses match
// regardless of case.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *gormCashbackRepo) Apply(ctx context.Context, rec *models.Cashback, eventID string, msgs ...outbox.Message) (bool, error) {
	rec.UserEmail = normalizeEmail(rec.UserEmail)
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if eventID != "" {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.ProcessedEvent{EventID: eventID, ProcessedAt: rec.Timestamp})
			if res.Error != nil {
				return fmt.Errorf("failed to record processed event: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return nil
			}
		}

		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("failed to save cashback: %w", err)
		}
		if err := increment(tx, rec.UserEmail, rec.CashbackAmount, rec.Timestamp); err != nil {
			return err
		}
		if err := outbox.Enqueue(tx, msgs...); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// increment adds amount to the stored total without reading it first.
func increment(tx *gorm.DB, email string, amount float64, at time.Time) error {
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_cashback": gorm.Expr("cashback_summaries.total_cashback + EXCLUDED.total_cashback"),
			"updated_at":     gorm.Expr("EXCLUDED.updated_at"),
		}),
	}).Create(&models.CashbackSummary{UserEmail: email, TotalCashback: amount, UpdatedAt: at}).Error
	if err != nil {
		return fmt.Errorf("failed to update cashback summary: %w", err)
	}
	return nil
}

func (r *gormCashbackRepo) FindByUserEmail(ctx context.Context, email string) ([]models.Cashback, error) {
	var recs []models.Cashback
	err := r.db.WithContext(ctx).Where("user_email = ?", normalizeEmail(email)).Order("timestamp").Find(&recs).Error
	return recs, err
}

func (r *gormCashbackRepo) SumByUserEmail(ctx context.Context, email string) (float64, error) {
	return sumFor(r.db.WithContext(ctx), normalizeEmail(email))
}

func sumFor(db *gorm.DB, email string) (float64, error) {
	var total float64
	err := db.Model(&models.Cashback{}).
		Select("COALESCE(SUM(cashback_amount), 0)").
		Where("user_email = ?", email).
		Scan(&total).Error
	return total, err
}

// FindSummary returns a zero summary when the user has none yet.
func (r *gormCashbackRepo) FindSummary(ctx context.Context, email string) (*models.CashbackSummary, error) {
	email = normalizeEmail(email)
	var summary models.CashbackSummary
	err := r.db.WithContext(ctx).Where("user_email = ?", email).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.CashbackSummary{UserEmail: email}, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *gormCashbackRepo) Reconcile(ctx context.Context, email string) (float64, error) {
	email = normalizeEmail(email)
	var total float64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if total, err = sumFor(tx, email); err != nil {
			return fmt.Errorf("failed to sum cashback records: %w", err)
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_email"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_cashback", "updated_at"}),
		}).Create(&models.CashbackSummary{UserEmail: email, TotalCashback: total, UpdatedAt: time.Now()}).Error
	})
	return total, err
}
