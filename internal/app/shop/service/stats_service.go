package service

import (
	"context"
	"fmt"
	"time"

	"junomarket/internal/app/shop/cache"
	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/repository"
)

// StatsService вычисляет агрегаты для админской панели
// Результат кешируется под ключом admin-stats и инвалидируется
// тегом admin при любой мутации хранилища
type StatsService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	reviewRepo  repository.ReviewRepository
	userRepo    repository.UserRepository
	cacheClient *cache.Client
	defaultTTL  time.Duration
}

// NewStatsService создает новый сервис статистики с внедрением зависимостей
func NewStatsService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	cacheClient *cache.Client,
	defaultTTL time.Duration,
) *StatsService {
	return &StatsService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		reviewRepo:  reviewRepo,
		userRepo:    userRepo,
		cacheClient: cacheClient,
		defaultTTL:  defaultTTL,
	}
}

// GetDashboardStats получает агрегаты админской панели с кешированием
func (s *StatsService) GetDashboardStats(ctx context.Context) (*entity.DashboardStats, error) {
	return cache.Fetch(ctx, s.cacheClient, cache.KeyAdminStats, s.defaultTTL, func(ctx context.Context) (*entity.DashboardStats, error) {
		productCount, err := s.productRepo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count products: %w", err)
		}

		orderCount, err := s.orderRepo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count orders: %w", err)
		}

		userCount, err := s.userRepo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count users: %w", err)
		}

		reviewCount, err := s.reviewRepo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count reviews: %w", err)
		}

		outOfStock, err := s.productRepo.CountOutOfStock(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count out-of-stock products: %w", err)
		}

		ordersByStatus, err := s.orderRepo.CountByStatus(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count orders by status: %w", err)
		}

		categoryInventory, err := s.productRepo.CountByCategory(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count products by category: %w", err)
		}

		return &entity.DashboardStats{
			ProductCount:      productCount,
			OrderCount:        orderCount,
			UserCount:         userCount,
			ReviewCount:       reviewCount,
			OutOfStock:        outOfStock,
			OrdersByStatus:    ordersByStatus,
			CategoryInventory: categoryInventory,
		}, nil
	})
}
