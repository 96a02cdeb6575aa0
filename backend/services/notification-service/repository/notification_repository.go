package repository

import (
	"context"

	"github.com/Arpita030/deals-App/backend/services/notification-service/models"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	SaveLog(ctx context.Context, entry *models.NotificationLog) error
	// GetLogs returns one page of logs, newest first, and the total match count.
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

type gormNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) SaveLog(ctx context.Context, entry *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormNotificationRepository) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	base := matching(r.db.WithContext(ctx).Model(&models.NotificationLog{}), filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []models.NotificationLog{}, 0, nil
	}

	logs := []models.NotificationLog{}
	err := paginate(base, filter.Page, filter.PageSize).Order("created_at DESC").Find(&logs).Error
	return logs, total, err
}

func matching(db *gorm.DB, f models.NotificationFilter) *gorm.DB {
	if f.Recipient != "" {
		db = db.Where("recipient = ?", f.Recipient)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Channel != "" {
		db = db.Where("channel = ?", f.Channel)
	}
	return db
}

func paginate(db *gorm.DB, page, size int) *gorm.DB {
	if size < 1 {
		size = 20
	}
	if page < 1 {
		page = 1
	}
	return db.Offset((page - 1) * size).Limit(size)
}
