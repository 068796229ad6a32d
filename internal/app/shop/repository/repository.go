package repository

import (
	"context"
	"errors"

	"junomarket/internal/app/shop/entity"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrOutOfStock      = errors.New("insufficient stock")
)

// ProductRepository определяет методы для работы с товарами в MongoDB
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	GetLatest(ctx context.Context, limit int) ([]entity.Product, error)
	GetCategories(ctx context.Context) ([]string, error)
	Search(ctx context.Context, req *entity.SearchProductsRequest, pageSize int) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateRatings(ctx context.Context, id string, ratings float64, numOfReviews int) error
	AdjustStock(ctx context.Context, id string, delta int) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountOutOfStock(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

// OrderRepository определяет методы для работы с заказами в MongoDB
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Order, error)
	GetAll(ctx context.Context) ([]entity.Order, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// ReviewRepository определяет методы для работы с отзывами в MongoDB
type ReviewRepository interface {
	Upsert(ctx context.Context, review *entity.Review) (created bool, err error)
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetByProductID(ctx context.Context, productID string) ([]entity.Review, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// UserRepository определяет методы для работы с пользователями в MongoDB
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Count(ctx context.Context) (int64, error)
}
