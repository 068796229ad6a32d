package service

import (
	"context"
	"io"

	"junomarket/internal/app/shop/entity"
)

// ImageUpload содержимое одного загружаемого изображения
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

type ProductServiceInterface interface {
	SearchProducts(ctx context.Context, req *entity.SearchProductsRequest) ([]entity.Product, error)
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	GetAllProducts(ctx context.Context) ([]entity.Product, error)
	GetLatestProducts(ctx context.Context) ([]entity.Product, error)
	GetCategories(ctx context.Context) ([]string, error)
	CreateProduct(ctx context.Context, req *entity.CreateProductRequest, images []ImageUpload) (*entity.Product, error)
	UpdateProduct(ctx context.Context, id string, req *entity.UpdateProductRequest, images []ImageUpload) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, userID string, req *entity.CreateOrderRequest) (*entity.Order, error)
	GetOrder(ctx context.Context, id string) (*entity.Order, error)
	GetMyOrders(ctx context.Context, userID string) ([]entity.Order, error)
	GetAllOrders(ctx context.Context) ([]entity.Order, error)
	ProcessOrder(ctx context.Context, id string) (*entity.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}

type ReviewServiceInterface interface {
	GetProductReviews(ctx context.Context, productID string) ([]entity.Review, error)
	UpsertReview(ctx context.Context, user *entity.User, req *entity.UpsertReviewRequest) (*entity.Review, bool, error)
	DeleteReview(ctx context.Context, reviewID, userID string) error
}

type StatsServiceInterface interface {
	GetDashboardStats(ctx context.Context) (*entity.DashboardStats, error)
}
