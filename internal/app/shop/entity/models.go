package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product представляет товар в магазине
// Поля Ratings и NumOfReviews - денормализованный агрегат отзывов,
// пересчитывается при каждом изменении отзывов
type Product struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description" bson:"description"`
	Price        float64            `json:"price" bson:"price"`
	Stock        int                `json:"stock" bson:"stock"`
	Category     string             `json:"category" bson:"category"`
	Photos       []Photo            `json:"photos" bson:"photos"`
	Ratings      float64            `json:"ratings" bson:"ratings"`
	NumOfReviews int                `json:"num_of_reviews" bson:"num_of_reviews"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// Photo представляет изображение товара во внешнем хранилище
type Photo struct {
	URL      string `json:"url" bson:"url"`
	PublicID string `json:"public_id" bson:"public_id"`
}

// Order представляет заказ
type Order struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ShippingInfo    ShippingInfo       `json:"shipping_info" bson:"shipping_info"`
	Items           []OrderItem        `json:"items" bson:"items"`
	UserID          string             `json:"user_id" bson:"user_id"` // ID пользователя-покупателя
	Subtotal        float64            `json:"subtotal" bson:"subtotal"`
	Tax             float64            `json:"tax" bson:"tax"`
	ShippingCharges float64            `json:"shipping_charges" bson:"shipping_charges"`
	Discount        float64            `json:"discount" bson:"discount"`
	Total           float64            `json:"total" bson:"total"`
	Status          OrderStatus        `json:"status" bson:"status"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
}

// ShippingInfo представляет адрес доставки заказа
type ShippingInfo struct {
	Address string `json:"address" bson:"address"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Country string `json:"country" bson:"country"`
	PinCode string `json:"pin_code" bson:"pin_code"`
}

// OrderItem представляет позицию в заказе
// Name, Price и Photo фиксируются на момент покупки
type OrderItem struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Photo     string  `json:"photo" bson:"photo"`
}

// OrderStatus представляет статус заказа
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "Processing" // Начальный статус
	OrderStatusShipped    OrderStatus = "Shipped"    // Отправлен
	OrderStatusDelivered  OrderStatus = "Delivered"  // Доставлен (терминальный)
)

// Next возвращает следующий статус заказа
// Переходы только вперёд: Processing -> Shipped -> Delivered
// Delivered и любой нераспознанный статус отображаются в Delivered
func (s OrderStatus) Next() OrderStatus {
	switch s {
	case OrderStatusProcessing:
		return OrderStatusShipped
	case OrderStatusShipped:
		return OrderStatusDelivered
	default:
		return OrderStatusDelivered
	}
}

// Review представляет отзыв о товаре
// Инвариант: не более одного отзыва на пару (user_id, product_id),
// обеспечивается upsert-ом в service layer и уникальным индексом
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID string             `json:"product_id" bson:"product_id"`
	UserID    string             `json:"user_id" bson:"user_id"`
	UserName  string             `json:"user_name" bson:"user_name"`
	Rating    int                `json:"rating" bson:"rating"` // Оценка от 1 до 5
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// User представляет пользователя
// Используется только для авторизации и атрибуции отзывов
type User struct {
	ID    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name"`
	Email string             `json:"email" bson:"email"`
	Role  string             `json:"role" bson:"role"` // user или admin
}

// DashboardStats представляет агрегаты для админской панели
type DashboardStats struct {
	ProductCount      int64            `json:"product_count"`
	OrderCount        int64            `json:"order_count"`
	UserCount         int64            `json:"user_count"`
	ReviewCount       int64            `json:"review_count"`
	OutOfStock        int64            `json:"out_of_stock"`
	OrdersByStatus    map[string]int64 `json:"orders_by_status"`
	CategoryInventory map[string]int64 `json:"category_inventory"`
}

// ShopEvent представляет событие изменения данных для Kafka
type ShopEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_CREATED, ORDER_CREATED, REVIEW_UPSERTED и т.п.
	EntityID  string    `json:"entity_id"`
	UserID    string    `json:"user_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
