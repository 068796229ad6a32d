package entity

// CreateProductRequest - поля товара из multipart формы
// Изображения (1-5 файлов) приходят отдельными частями формы
type CreateProductRequest struct {
	Name        string  `form:"name" validate:"required,min=2,max=200"`
	Description string  `form:"description" validate:"required,min=10,max=2000"`
	Price       float64 `form:"price" validate:"required,gt=0"`
	Stock       int     `form:"stock" validate:"gte=0"`
	Category    string  `form:"category" validate:"required,min=2,max=100"`
}

// UpdateProductRequest - частичное обновление товара
type UpdateProductRequest struct {
	Name        string  `form:"name" validate:"omitempty,min=2,max=200"`
	Description string  `form:"description" validate:"omitempty,min=10,max=2000"`
	Price       float64 `form:"price" validate:"omitempty,gt=0"`
	Stock       int     `form:"stock" validate:"omitempty,gte=0"`
	Category    string  `form:"category" validate:"omitempty,min=2,max=100"`
}

// SearchProductsRequest - параметры поиска по каталогу
// Комбинация параметров определяет ключ кеша products-{...}
type SearchProductsRequest struct {
	Search   string `form:"search" validate:"omitempty,max=200"`
	Sort     string `form:"sort" validate:"omitempty,oneof=asc desc"`
	Category string `form:"category" validate:"omitempty,max=100"`
	Price    int    `form:"price" validate:"omitempty,gt=0"` // Верхняя граница цены
	Page     int    `form:"page" validate:"omitempty,gte=1"`
}

// CreateOrderRequest - запрос на создание заказа
type CreateOrderRequest struct {
	ShippingInfo    ShippingInfo       `json:"shipping_info" validate:"required"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Subtotal        float64            `json:"subtotal" validate:"required,gt=0"`
	Tax             float64            `json:"tax" validate:"gte=0"`
	ShippingCharges float64            `json:"shipping_charges" validate:"gte=0"`
	Discount        float64            `json:"discount" validate:"gte=0"`
	Total           float64            `json:"total" validate:"required,gt=0"`
}

// OrderItemRequest - позиция создаваемого заказа
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// UpsertReviewRequest - создание или обновление отзыва
// Повторная отправка тем же пользователем для того же товара
// обновляет существующий отзыв
type UpsertReviewRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,min=3,max=1000"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Success bool   `json:"success"` // Всегда false
	Message string `json:"message"`
}

// MessageResponse - ответ об успехе без данных
type MessageResponse struct {
	Success bool   `json:"success"` // Всегда true
	Message string `json:"message"`
}

// ProductResponse - ответ с одним товаром
type ProductResponse struct {
	Success bool     `json:"success"`
	Product *Product `json:"product"`
}

// ProductListResponse - ответ со списком товаров
type ProductListResponse struct {
	Success  bool      `json:"success"`
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// CategoryListResponse - ответ со списком категорий
type CategoryListResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

// OrderResponse - ответ с одним заказом
type OrderResponse struct {
	Success bool   `json:"success"`
	Order   *Order `json:"order"`
}

// OrderListResponse - ответ со списком заказов
type OrderListResponse struct {
	Success bool    `json:"success"`
	Orders  []Order `json:"orders"`
	Total   int     `json:"total"`
}

// ReviewListResponse - ответ со списком отзывов
type ReviewListResponse struct {
	Success bool     `json:"success"`
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
}

// StatsResponse - ответ с агрегатами админской панели
type StatsResponse struct {
	Success bool            `json:"success"`
	Stats   *DashboardStats `json:"stats"`
}
