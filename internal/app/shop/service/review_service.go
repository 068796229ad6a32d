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
	"junomarket/pkg/metrics"
)

// ReviewService обрабатывает бизнес-логику отзывов
// После каждого изменения отзывов пересчитывает агрегат
// рейтинга товара и инвалидирует затронутые ключи кеша
type ReviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	cacheClient *cache.Client
	invalidator *cache.Invalidator
	producer    infrastructure.MessagePublisher
	defaultTTL  time.Duration
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	cacheClient *cache.Client,
	invalidator *cache.Invalidator,
	producer infrastructure.MessagePublisher,
	defaultTTL time.Duration,
) *ReviewService {
	return &ReviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		cacheClient: cacheClient,
		invalidator: invalidator,
		producer:    producer,
		defaultTTL:  defaultTTL,
	}
}

// AggregateRatings вычисляет среднюю оценку и количество отзывов
// Чистая функция: ноль отзывов дает (0, 0) без деления на ноль
func AggregateRatings(reviews []entity.Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}

	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}

	return float64(sum) / float64(len(reviews)), len(reviews)
}

// GetProductReviews получает отзывы товара с кешированием
func (s *ReviewService) GetProductReviews(ctx context.Context, productID string) ([]entity.Review, error) {
	return cache.Fetch(ctx, s.cacheClient, cache.ReviewsKey(productID), s.defaultTTL, func(ctx context.Context) ([]entity.Review, error) {
		reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("failed to get reviews: %w", err)
		}
		return reviews, nil
	})
}

// UpsertReview создает отзыв или обновляет существующий отзыв
// того же пользователя для того же товара (не более одного на пару).
// Возвращает true, если отзыв был создан, false - если обновлен
func (s *ReviewService) UpsertReview(ctx context.Context, user *entity.User, req *entity.UpsertReviewRequest) (*entity.Review, bool, error) {
	// Проверяем существование товара
	if _, err := s.productRepo.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, false, ErrProductNotFound
		}
		return nil, false, fmt.Errorf("failed to verify product: %w", err)
	}

	review := &entity.Review{
		ProductID: req.ProductID,
		UserID:    user.ID.Hex(),
		UserName:  user.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	created, err := s.reviewRepo.Upsert(ctx, review)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert review: %w", err)
	}

	if err := s.recomputeProductRatings(ctx, req.ProductID); err != nil {
		return nil, false, err
	}

	s.invalidateReviewCaches(ctx, req.ProductID)

	publishEvent(ctx, s.producer, "REVIEW_UPSERTED", review.ID.Hex(), review.UserID)

	kind := "updated"
	if created {
		kind = "created"
	}
	metrics.ReviewsUpserted.WithLabelValues(kind).Inc()
	metrics.ReviewsRating.Observe(float64(req.Rating))

	return review, created, nil
}

// DeleteReview удаляет отзыв с проверкой прав доступа
// Только автор может удалить свой отзыв
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, userID string) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	if review.UserID != userID {
		return ErrNotReviewOwner
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if err := s.recomputeProductRatings(ctx, review.ProductID); err != nil {
		return err
	}

	s.invalidateReviewCaches(ctx, review.ProductID)

	publishEvent(ctx, s.producer, "REVIEW_DELETED", reviewID, userID)

	return nil
}

// recomputeProductRatings пересчитывает агрегат отзывов и сохраняет
// его на товаре. Вызывается после каждой мутации отзывов
func (s *ReviewService) recomputeProductRatings(ctx context.Context, productID string) error {
	reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get reviews for aggregation: %w", err)
	}

	ratings, count := AggregateRatings(reviews)

	if err := s.productRepo.UpdateRatings(ctx, productID, ratings, count); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			// Товар удалили параллельно - агрегат уже никому не нужен
			return nil
		}
		return fmt.Errorf("failed to persist product ratings: %w", err)
	}

	return nil
}

// invalidateReviewCaches инвалидирует кеш после мутации отзыва
// Рейтинг товара изменился, поэтому устарели и ключи товаров
func (s *ReviewService) invalidateReviewCaches(ctx context.Context, productID string) {
	s.invalidator.Invalidate(ctx, cache.Tags{
		Product:         true,
		Review:          true,
		Admin:           true,
		ProductIDs:      []string{productID},
		ReviewProductID: productID,
	})
}
