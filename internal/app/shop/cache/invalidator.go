package cache

import (
	"context"

	"junomarket/pkg/logger"
	"junomarket/pkg/metrics"
)

// Tags описывает, какие кешированные представления сделала
// устаревшими мутация хранилища
type Tags struct {
	Product bool // Изменились товары
	Order   bool // Изменились заказы
	Admin   bool // Изменились агрегаты админской панели
	Review  bool // Изменились отзывы

	UserID          string   // Чьи заказы затронуты (my-orders-{userId})
	OrderID         string   // Конкретный заказ (order-{orderId})
	ReviewProductID string   // Отзывы какого товара затронуты (reviews-{productId})
	ProductIDs      []string // Конкретные товары (product-{id})
}

// Invalidator удаляет ключи кеша, затронутые мутацией хранилища
// Вызывается строго после записи в MongoDB, никогда до.
// Фильтрованные списки products-* не отслеживаются: они истекают
// по короткому TTL вместо точного удаления
type Invalidator struct {
	client *Client
}

// NewInvalidator создает новый инвалидатор поверх клиента кеша
func NewInvalidator(client *Client) *Invalidator {
	return &Invalidator{client: client}
}

// Invalidate удаляет ключи по набору тегов
// Ошибки удаления логируются и не влияют на результат мутации:
// кеш не авторитетен, окно устаревания до истечения TTL допустимо
func (i *Invalidator) Invalidate(ctx context.Context, tags Tags) {
	keys := i.collectKeys(tags)
	if len(keys) == 0 {
		return
	}

	deleted, err := i.client.Delete(ctx, keys...)
	if err != nil {
		logger.Error().Err(err).Strs("keys", keys).Msg("Cache invalidation failed")
		return
	}

	for _, tag := range tags.active() {
		metrics.RecordInvalidation(serviceName, tag, len(keys))
	}

	logger.Debug().Strs("keys", keys).Int64("deleted", deleted).Msg("Cache invalidated")
}

// collectKeys собирает точный набор ключей для удаления по тегам
func (i *Invalidator) collectKeys(tags Tags) []string {
	var keys []string

	if tags.Product {
		keys = append(keys, KeyLatestProducts, KeyAllProducts, KeyCategories)
		for _, id := range tags.ProductIDs {
			keys = append(keys, ProductKey(id))
		}
	}

	if tags.Order {
		keys = append(keys, KeyAllOrders)
		if tags.UserID != "" {
			keys = append(keys, MyOrdersKey(tags.UserID))
		}
		if tags.OrderID != "" {
			keys = append(keys, OrderKey(tags.OrderID))
		}
	}

	if tags.Admin {
		keys = append(keys, KeyAdminStats, KeyAdminCharts)
	}

	if tags.Review && tags.ReviewProductID != "" {
		keys = append(keys, ReviewsKey(tags.ReviewProductID))
	}

	return keys
}

func (t Tags) active() []string {
	var names []string
	if t.Product {
		names = append(names, "product")
	}
	if t.Order {
		names = append(names, "order")
	}
	if t.Admin {
		names = append(names, "admin")
	}
	if t.Review {
		names = append(names, "review")
	}
	return names
}
