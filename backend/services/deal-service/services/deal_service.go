package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/Arpita030/deals-App/backend/services/common/errors"
	"github.com/Arpita030/deals-App/backend/services/deal-service/models"
	"github.com/Arpita030/deals-App/backend/services/deal-service/repository"
	"go.uber.org/zap"
)

// DealService defines the deal catalogue operations.
type DealService interface {
	ListDeals(ctx context.Context) ([]models.Deal, error)
	ListActiveDeals(ctx context.Context) ([]models.Deal, error)
	ListDealsByCategory(ctx context.Context, category string) ([]models.Deal, error)
	GetDeal(ctx context.Context, id int64) (*models.Deal, error)
	CreateDeal(ctx context.Context, req *models.DealRequest) (*models.Deal, error)
	UpdateDeal(ctx context.Context, id int64, req *models.DealRequest) (*models.Deal, error)
	DeleteDeal(ctx context.Context, id int64) error
	ExpireDeals(ctx context.Context, now time.Time) (int, error)
}

type dealServiceImpl struct {
	repo   repository.DealRepository
	logger *zap.Logger
}

func NewDealService(repo repository.DealRepository, logger *zap.Logger) DealService {
	return &dealServiceImpl{repo: repo, logger: logger}
}

func notFound(id int64) error {
	return apperrors.NotFound(fmt.Sprintf("Deal not found with id: %d", id))
}

func (s *dealServiceImpl) ListDeals(ctx context.Context) ([]models.Deal, error) {
	deals, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list deals", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return nonNil(deals), nil
}

func (s *dealServiceImpl) ListActiveDeals(ctx context.Context) ([]models.Deal, error) {
	deals, err := s.repo.FindActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list active deals", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return nonNil(deals), nil
}

func (s *dealServiceImpl) ListDealsByCategory(ctx context.Context, category string) ([]models.Deal, error) {
	deals, err := s.repo.FindByCategory(ctx, category)
	if err != nil {
		s.logger.Error("Failed to list deals by category", zap.String("category", category), zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return nonNil(deals), nil
}

func (s *dealServiceImpl) GetDeal(ctx context.Context, id int64) (*models.Deal, error) {
	deal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDealNotFound) {
			return nil, notFound(id)
		}
		s.logger.Error("Failed to load deal", zap.Int64("deal_id", id), zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return deal, nil
}

func (s *dealServiceImpl) CreateDeal(ctx context.Context, req *models.DealRequest) (*models.Deal, error) {
	deal := &models.Deal{}
	req.Apply(deal)

	if err := s.repo.Create(ctx, deal); err != nil {
		s.logger.Error("Failed to create deal", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("Deal created", zap.Int64("deal_id", deal.ID), zap.String("category", deal.Category))
	return deal, nil
}

func (s *dealServiceImpl) UpdateDeal(ctx context.Context, id int64, req *models.DealRequest) (*models.Deal, error) {
	deal, err := s.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(deal)

	if err := s.repo.Update(ctx, deal); err != nil {
		s.logger.Error("Failed to update deal", zap.Int64("deal_id", id), zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("Deal updated", zap.Int64("deal_id", id))
	return deal, nil
}

func (s *dealServiceImpl) DeleteDeal(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrDealNotFound) {
			return notFound(id)
		}
		s.logger.Error("Failed to delete deal", zap.Int64("deal_id", id), zap.Error(err))
		return apperrors.Internal(err)
	}

	s.logger.Info("Deal deleted", zap.Int64("deal_id", id))
	return nil
}

// ExpireDeals deactivates every active deal that expired before now.
func (s *dealServiceImpl) ExpireDeals(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.repo.DeactivateExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired deals: %w", err)
	}
	if len(ids) > 0 {
		s.logger.Info("Expired deals deactivated", zap.Int64s("deal_ids", ids))
	}
	return len(ids), nil
}

func nonNil(deals []models.Deal) []models.Deal {
	if deals == nil {
		return []models.Deal{}
	}
	return deals
}
