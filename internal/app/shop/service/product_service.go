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

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrReviewNotFound  = errors.New("review not found")
	ErrOutOfStock      = errors.New("insufficient stock")
	ErrImageCount      = errors.New("product requires between 1 and 5 images")
	ErrNotReviewOwner  = errors.New("review belongs to another user")
)

const (
	productsPageSize = 8 // Размер страницы каталога
	latestLimit      = 5 // Количество товаров в "новинках"
)

// ProductService обрабатывает бизнес-логику каталога товаров
// Все чтения идут через read-through кеш, все мутации
// сначала пишут в MongoDB и только потом инвалидируют кеш
type ProductService struct {
	productRepo repository.ProductRepository
	cacheClient *cache.Client
	invalidator *cache.Invalidator
	images      infrastructure.ImageStore
	producer    infrastructure.MessagePublisher
	defaultTTL  time.Duration
	listTTL     time.Duration
}

// NewProductService создает новый сервис каталога с внедрением зависимостей
func NewProductService(
	productRepo repository.ProductRepository,
	cacheClient *cache.Client,
	invalidator *cache.Invalidator,
	images infrastructure.ImageStore,
	producer infrastructure.MessagePublisher,
	defaultTTL, listTTL time.Duration,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		cacheClient: cacheClient,
		invalidator: invalidator,
		images:      images,
		producer:    producer,
		defaultTTL:  defaultTTL,
		listTTL:     listTTL,
	}
}

// SearchProducts получает страницу каталога с фильтрами
// Кешируется с коротким TTL: комбинаций фильтров слишком много
// для точной инвалидации, допустимо окно устаревания до listTTL
func (s *ProductService) SearchProducts(ctx context.Context, req *entity.SearchProductsRequest) ([]entity.Product, error) {
	key := cache.ProductsKey(req.Search, req.Sort, req.Category, req.Price, req.Page)

	return cache.Fetch(ctx, s.cacheClient, key, s.listTTL, func(ctx context.Context) ([]entity.Product, error) {
		products, err := s.productRepo.Search(ctx, req, productsPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to search products: %w", err)
		}
		return products, nil
	})
}

// GetProduct получает товар по ID с кешированием
func (s *ProductService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	return cache.Fetch(ctx, s.cacheClient, cache.ProductKey(id), s.defaultTTL, func(ctx context.Context) (*entity.Product, error) {
		product, err := s.productRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to get product: %w", err)
		}
		return product, nil
	})
}

// GetAllProducts получает все товары для админской панели
func (s *ProductService) GetAllProducts(ctx context.Context) ([]entity.Product, error) {
	return cache.Fetch(ctx, s.cacheClient, cache.KeyAllProducts, s.defaultTTL, func(ctx context.Context) ([]entity.Product, error) {
		products, err := s.productRepo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get products: %w", err)
		}
		return products, nil
	})
}

// GetLatestProducts получает последние добавленные товары
func (s *ProductService) GetLatestProducts(ctx context.Context) ([]entity.Product, error) {
	return cache.Fetch(ctx, s.cacheClient, cache.KeyLatestProducts, s.defaultTTL, func(ctx context.Context) ([]entity.Product, error) {
		products, err := s.productRepo.GetLatest(ctx, latestLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest products: %w", err)
		}
		return products, nil
	})
}

// GetCategories получает список категорий
func (s *ProductService) GetCategories(ctx context.Context) ([]string, error) {
	return cache.Fetch(ctx, s.cacheClient, cache.KeyCategories, s.defaultTTL, func(ctx context.Context) ([]string, error) {
		categories, err := s.productRepo.GetCategories(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get categories: %w", err)
		}
		return categories, nil
	})
}

// CreateProduct создает новый товар
// 1. Загружает 1-5 изображений во внешнее хранилище
// 2. Сохраняет товар в MongoDB
// 3. Инвалидирует кеш и отправляет событие PRODUCT_CREATED
func (s *ProductService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest, images []ImageUpload) (*entity.Product, error) {
	if len(images) < 1 || len(images) > 5 {
		return nil, ErrImageCount
	}

	photos, err := s.uploadImages(ctx, images)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Photos:      photos,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		// Товар не создан - убираем уже загруженные изображения
		s.destroyPhotos(ctx, photos)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidator.Invalidate(ctx, cache.Tags{
		Product:    true,
		Admin:      true,
		ProductIDs: []string{product.ID.Hex()},
	})

	publishEvent(ctx, s.producer, "PRODUCT_CREATED", product.ID.Hex(), "")
	metrics.ProductsCreated.Inc()

	return product, nil
}

// UpdateProduct обновляет товар, опционально заменяя изображения
// Обновляются только переданные поля (частичное обновление)
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *entity.UpdateProductRequest, images []ImageUpload) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.Stock > 0 {
		product.Stock = req.Stock
	}
	if req.Category != "" {
		product.Category = req.Category
	}

	if len(images) > 0 {
		if len(images) > 5 {
			return nil, ErrImageCount
		}
		photos, err := s.uploadImages(ctx, images)
		if err != nil {
			return nil, err
		}
		s.destroyPhotos(ctx, product.Photos)
		product.Photos = photos
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidator.Invalidate(ctx, cache.Tags{
		Product:    true,
		Admin:      true,
		ProductIDs: []string{id},
	})

	publishEvent(ctx, s.producer, "PRODUCT_UPDATED", id, "")

	return product, nil
}

// DeleteProduct удаляет товар и его изображения
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	// Изображения удаляем после записи в БД, ошибки не критичны
	s.destroyPhotos(ctx, product.Photos)

	s.invalidator.Invalidate(ctx, cache.Tags{
		Product:    true,
		Admin:      true,
		ProductIDs: []string{id},
	})

	publishEvent(ctx, s.producer, "PRODUCT_DELETED", id, "")

	return nil
}

// uploadImages загружает изображения во внешнее хранилище
// При ошибке удаляет уже загруженные, чтобы не копить сироты
func (s *ProductService) uploadImages(ctx context.Context, images []ImageUpload) ([]entity.Photo, error) {
	photos := make([]entity.Photo, 0, len(images))
	for _, img := range images {
		photo, err := s.images.Upload(ctx, img.Filename, img.Content)
		if err != nil {
			s.destroyPhotos(ctx, photos)
			return nil, fmt.Errorf("failed to upload image %q: %w", img.Filename, err)
		}
		photos = append(photos, *photo)
	}
	return photos, nil
}

// destroyPhotos удаляет изображения из внешнего хранилища best-effort
func (s *ProductService) destroyPhotos(ctx context.Context, photos []entity.Photo) {
	for _, photo := range photos {
		if err := s.images.Destroy(ctx, photo.PublicID); err != nil {
			logger.Warn().Err(err).Str("public_id", photo.PublicID).Msg("Failed to destroy image")
		}
	}
}
