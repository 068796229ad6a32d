package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"junomarket/internal/app/shop/cache"
	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/infrastructure"
	"junomarket/internal/app/shop/repository"
	"junomarket/pkg/logger"
	"junomarket/pkg/metrics"
)

// OrderService обрабатывает бизнес-логику заказов
// Создание заказа списывает остатки товаров, удаление возвращает их,
// поэтому мутации заказов инвалидируют и кеш товаров
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cacheClient *cache.Client
	invalidator *cache.Invalidator
	producer    infrastructure.MessagePublisher
	defaultTTL  time.Duration
}

// NewOrderService создает новый сервис заказов с внедрением зависимостей
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cacheClient *cache.Client,
	invalidator *cache.Invalidator,
	producer infrastructure.MessagePublisher,
	defaultTTL time.Duration,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cacheClient: cacheClient,
		invalidator: invalidator,
		producer:    producer,
		defaultTTL:  defaultTTL,
	}
}

// CreateOrder создает заказ
// 1. Списывает остатки по каждой позиции, фиксируя имя и цену на момент покупки
// 2. Сохраняет заказ со статусом Processing
// 3. Инвалидирует кеш товаров и заказов, отправляет событие ORDER_CREATED
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req *entity.CreateOrderRequest) (*entity.Order, error) {
	items := make([]entity.OrderItem, 0, len(req.Items))
	productIDs := make([]string, 0, len(req.Items))

	for _, item := range req.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			s.restoreStock(ctx, items)
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to get product: %w", err)
		}

		if err := s.productRepo.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.restoreStock(ctx, items)
			if errors.Is(err, repository.ErrOutOfStock) {
				return nil, ErrOutOfStock
			}
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to adjust stock: %w", err)
		}

		photo := ""
		if len(product.Photos) > 0 {
			photo = product.Photos[0].URL
		}

		items = append(items, entity.OrderItem{
			ProductID: item.ProductID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
			Photo:     photo,
		})
		productIDs = append(productIDs, item.ProductID)
	}

	order := &entity.Order{
		ShippingInfo:    req.ShippingInfo,
		Items:           items,
		UserID:          userID,
		Subtotal:        req.Subtotal,
		Tax:             req.Tax,
		ShippingCharges: req.ShippingCharges,
		Discount:        req.Discount,
		Total:           req.Total,
		Status:          entity.OrderStatusProcessing,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.restoreStock(ctx, items)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Остатки изменились - кеш товаров тоже устарел
	s.invalidator.Invalidate(ctx, cache.Tags{
		Product:    true,
		Order:      true,
		Admin:      true,
		UserID:     userID,
		ProductIDs: productIDs,
	})

	publishEvent(ctx, s.producer, "ORDER_CREATED", order.ID.Hex(), userID)
	metrics.OrdersCreated.Inc()

	return order, nil
}

// GetOrder получает заказ по ID с кешированием
// Проверка доступа (владелец или админ) выполняется в handler
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return cache.Fetch(ctx, s.cacheClient, cache.OrderKey(id), s.defaultTTL, func(ctx context.Context) (*entity.Order, error) {
		order, err := s.orderRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, fmt.Errorf("failed to get order: %w", err)
		}
		return order, nil
	})
}

// GetMyOrders получает заказы пользователя с кешированием
func (s *OrderService) GetMyOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	return cache.Fetch(ctx, s.cacheClient, cache.MyOrdersKey(userID), s.defaultTTL, func(ctx context.Context) ([]entity.Order, error) {
		orders, err := s.orderRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get orders: %w", err)
		}
		return orders, nil
	})
}

// GetAllOrders получает все заказы для админской панели
func (s *OrderService) GetAllOrders(ctx context.Context) ([]entity.Order, error) {
	return cache.Fetch(ctx, s.cacheClient, cache.KeyAllOrders, s.defaultTTL, func(ctx context.Context) ([]entity.Order, error) {
		orders, err := s.orderRepo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get orders: %w", err)
		}
		return orders, nil
	})
}

// ProcessOrder переводит заказ в следующий статус
// Переходы только вперёд: Processing -> Shipped -> Delivered,
// повторная обработка доставленного заказа - no-op
func (s *OrderService) ProcessOrder(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	next := order.Status.Next()
	if err := s.orderRepo.UpdateStatus(ctx, id, next); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = next

	s.invalidator.Invalidate(ctx, cache.Tags{
		Order:   true,
		Admin:   true,
		UserID:  order.UserID,
		OrderID: id,
	})

	publishEvent(ctx, s.producer, "ORDER_STATUS_CHANGED", id, order.UserID)
	metrics.OrdersByStatus.WithLabelValues(string(next)).Inc()

	return order, nil
}

// DeleteOrder удаляет заказ и возвращает остатки товаров
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to get order: %w", err)
	}

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}

	// Возвращаем списанные остатки
	s.restoreStock(ctx, order.Items)

	productIDs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	s.invalidator.Invalidate(ctx, cache.Tags{
		Product:    true,
		Order:      true,
		Admin:      true,
		UserID:     order.UserID,
		OrderID:    id,
		ProductIDs: productIDs,
	})

	publishEvent(ctx, s.producer, "ORDER_DELETED", id, order.UserID)

	return nil
}

// restoreStock возвращает остатки по позициям best-effort
// Используется при откате недособранного заказа и при удалении заказа
func (s *OrderService) restoreStock(ctx context.Context, items []entity.OrderItem) {
	for _, item := range items {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Warn().Err(err).Str("product_id", item.ProductID).Msg("Failed to restore stock")
		}
	}
}
