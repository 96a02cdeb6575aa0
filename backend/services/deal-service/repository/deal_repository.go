package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Arpita030/deals-App/backend/services/deal-service/models"
	"gorm.io/gorm"
)

var ErrDealNotFound = errors.New("deal not found")

// DealRepository defines the interface for deal data access.
type DealRepository interface {
	FindAll(ctx context.Context) ([]models.Deal, error)
	FindActive(ctx context.Context) ([]models.Deal, error)
	FindByCategory(ctx context.Context, category string) ([]models.Deal, error)
	FindByID(ctx context.Context, id int64) (*models.Deal, error)
	Create(ctx context.Context, deal *models.Deal) error
	Update(ctx context.Context, deal *models.Deal) error
	Delete(ctx context.Context, id int64) error
	// DeactivateExpired switches off active deals whose expiry is before now
	// and returns their ids.
	DeactivateExpired(ctx context.Context, now time.Time) ([]int64, error)
}

type GormDealRepository struct {
	db *gorm.DB
}

func NewGormDealRepository(db *gorm.DB) *GormDealRepository {
	return &GormDealRepository{db: db}
}

func (r *GormDealRepository) FindAll(ctx context.Context) ([]models.Deal, error) {
	var deals []models.Deal
	err := r.db.WithContext(ctx).Order("id").Find(&deals).Error
	return deals, err
}

func (r *GormDealRepository) FindActive(ctx context.Context) ([]models.Deal, error) {
	var deals []models.Deal
	err := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&deals).Error
	return deals, err
}

// FindByCategory matches the category case-insensitively.
func (r *GormDealRepository) FindByCategory(ctx context.Context, category string) ([]models.Deal, error) {
	var deals []models.Deal
	err := r.db.WithContext(ctx).
		Where("LOWER(category) = ?", strings.ToLower(category)).
		Order("id").
		Find(&deals).Error
	return deals, err
}

func (r *GormDealRepository) FindByID(ctx context.Context, id int64) (*models.Deal, error) {
	var deal models.Deal
	if err := r.db.WithContext(ctx).First(&deal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDealNotFound
		}
		return nil, err
	}
	return &deal, nil
}

func (r *GormDealRepository) Create(ctx context.Context, deal *models.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *GormDealRepository) Update(ctx context.Context, deal *models.Deal) error {
	return r.db.WithContext(ctx).Save(deal).Error
}

func (r *GormDealRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Deal{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDealNotFound
	}
	return nil
}

func (r *GormDealRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Deal{}).
			Where("active = ? AND expiry_date < ?", true, now).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&models.Deal{}).Where("id IN ?", ids).Update("active", false).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
