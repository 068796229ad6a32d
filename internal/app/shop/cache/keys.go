package cache

import (
	"fmt"
	"net/url"
	"strings"
)

// Ключи кеша с точной инвалидацией
const (
	KeyAllProducts    = "all-products"
	KeyAllOrders      = "all-orders"
	KeyCategories     = "categories"
	KeyLatestProducts = "latest-products"
	KeyAdminStats     = "admin-stats"
	KeyAdminCharts    = "admin-charts"
)

// ProductsKey строит ключ для фильтрованного списка товаров
// Ключ детерминирован и инъективен по параметрам запроса:
// одинаковые параметры всегда дают одинаковый ключ, разные - разные.
// Эти ключи не инвалидируются точечно, а живут с коротким TTL.
// Сегменты экранируются и разделяются символом "|", который экранирование
// всегда кодирует: разделитель внутри параметра невозможен,
// поэтому разные запросы не склеиваются в один ключ
func ProductsKey(search, sort, category string, price, page int) string {
	return fmt.Sprintf("products-%s|%s|%s|%d|%d",
		url.QueryEscape(search), url.QueryEscape(sort), url.QueryEscape(category), price, page)
}

// ProductKey строит ключ для одного товара
func ProductKey(id string) string {
	return "product-" + id
}

// OrderKey строит ключ для одного заказа
func OrderKey(id string) string {
	return "order-" + id
}

// MyOrdersKey строит ключ для списка заказов пользователя
func MyOrdersKey(userID string) string {
	return "my-orders-" + userID
}

// ReviewsKey строит ключ для списка отзывов товара
func ReviewsKey(productID string) string {
	return "reviews-" + productID
}

// KeyPrefix возвращает префикс ключа до первого дефиса
// Используется как label в метриках попаданий/промахов кеша
func KeyPrefix(key string) string {
	if idx := strings.Index(key, "-"); idx > 0 {
		return key[:idx]
	}
	return key
}
