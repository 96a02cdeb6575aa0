package outbox

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Enqueue inserts msgs using tx, which should be the caller's open transaction.
func Enqueue(tx *gorm.DB, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := tx.Create(&msgs).Error; err != nil {
		return fmt.Errorf("failed to enqueue outbox messages: %w", err)
	}
	return nil
}

// claimPending locks up to limit pending rows, skipping rows another relay
// already holds.
func claimPending(tx *gorm.DB, limit, maxAttempts int) ([]Message, error) {
	var batch []Message
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND attempts < ?", StatusPending, maxAttempts).
		Order("created_at").
		Limit(limit).
		Find(&batch).Error
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox messages: %w", err)
	}
	return batch, nil
}

func markSent(tx *gorm.DB, id interface{}, at time.Time) error {
	return tx.Model(&Message{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     StatusSent,
		"sent_at":    at,
		"last_error": "",
	}).Error
}

func markFailed(tx *gorm.DB, m Message, cause error, maxAttempts int) error {
	status := StatusPending
	if m.Attempts+1 >= maxAttempts {
		status = StatusFailed
	}
	return tx.Model(&Message{}).Where("id = ?", m.ID).Updates(map[string]interface{}{
		"status":     status,
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": cause.Error(),
	}).Error
}

// CountByStatus is used by health and admin endpoints.
func CountByStatus(ctx context.Context, db *gorm.DB, status Status) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&Message{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
