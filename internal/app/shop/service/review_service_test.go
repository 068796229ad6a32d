package service

import (
	"context"
	"testing"
	"time"

	"junomarket/internal/app/shop/cache"
	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/repository"
	"junomarket/internal/app/shop/repository/mocks"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newTestCache поднимает miniredis и возвращает клиент кеша поверх него
func newTestCache(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return cache.NewClientWithRedis(rdb), mr
}

func newTestReviewService(t *testing.T) (*ReviewService, *mocks.MockReviewRepository, *mocks.MockProductRepository, *mocks.MockMessagePublisher, *miniredis.Miniredis) {
	t.Helper()

	reviewRepo := new(mocks.MockReviewRepository)
	productRepo := new(mocks.MockProductRepository)
	producer := &mocks.MockMessagePublisher{Messages: make([][]byte, 0)}

	cacheClient, mr := newTestCache(t)
	invalidator := cache.NewInvalidator(cacheClient)

	svc := NewReviewService(reviewRepo, productRepo, cacheClient, invalidator, producer, time.Minute)
	return svc, reviewRepo, productRepo, producer, mr
}

// ===================== AggregateRatings Tests =====================

func TestAggregateRatings(t *testing.T) {
	ratings, count := AggregateRatings([]entity.Review{
		{Rating: 3},
		{Rating: 5},
	})

	assert.Equal(t, 4.0, ratings)
	assert.Equal(t, 2, count)
}

func TestAggregateRatings_Empty(t *testing.T) {
	ratings, count := AggregateRatings(nil)

	assert.Equal(t, 0.0, ratings)
	assert.Equal(t, 0, count)
}

func TestAggregateRatings_Single(t *testing.T) {
	ratings, count := AggregateRatings([]entity.Review{{Rating: 5}})

	assert.Equal(t, 5.0, ratings)
	assert.Equal(t, 1, count)
}

func TestAggregateRatings_NonIntegerAverage(t *testing.T) {
	ratings, count := AggregateRatings([]entity.Review{
		{Rating: 5},
		{Rating: 4},
		{Rating: 4},
	})

	assert.InDelta(t, 4.333, ratings, 0.001)
	assert.Equal(t, 3, count)
}

// ===================== UpsertReview Tests =====================

func TestUpsertReview_Created(t *testing.T) {
	svc, reviewRepo, productRepo, producer, _ := newTestReviewService(t)

	ctx := context.Background()
	user := &entity.User{ID: primitive.NewObjectID(), Name: "Alice", Role: "user"}
	req := &entity.UpsertReviewRequest{ProductID: "p1", Rating: 5, Comment: "Great product!"}

	productRepo.On("GetByID", ctx, "p1").Return(&entity.Product{Name: "Widget"}, nil)
	reviewRepo.On("Upsert", ctx, mock.AnythingOfType("*entity.Review")).Return(true, nil)
	reviewRepo.On("GetByProductID", ctx, "p1").Return([]entity.Review{{Rating: 5}}, nil)
	productRepo.On("UpdateRatings", ctx, "p1", 5.0, 1).Return(nil)
	producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	review, created, err := svc.UpsertReview(ctx, user, req)

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, user.ID.Hex(), review.UserID)
	assert.Equal(t, "Alice", review.UserName)
	assert.Equal(t, 5, review.Rating)
	reviewRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
}

func TestUpsertReview_UpdatedRecomputesAggregate(t *testing.T) {
	svc, reviewRepo, productRepo, producer, _ := newTestReviewService(t)

	ctx := context.Background()
	user := &entity.User{ID: primitive.NewObjectID(), Name: "Alice", Role: "user"}
	req := &entity.UpsertReviewRequest{ProductID: "p1", Rating: 3, Comment: "Changed my mind"}

	productRepo.On("GetByID", ctx, "p1").Return(&entity.Product{Name: "Widget"}, nil)
	// Повторный отзыв того же пользователя обновляет существующий
	reviewRepo.On("Upsert", ctx, mock.AnythingOfType("*entity.Review")).Return(false, nil)
	reviewRepo.On("GetByProductID", ctx, "p1").Return([]entity.Review{{Rating: 3}}, nil)
	productRepo.On("UpdateRatings", ctx, "p1", 3.0, 1).Return(nil)
	producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	_, created, err := svc.UpsertReview(ctx, user, req)

	require.NoError(t, err)
	assert.False(t, created)
	// Количество отзывов не выросло
	productRepo.AssertCalled(t, "UpdateRatings", ctx, "p1", 3.0, 1)
}

func TestUpsertReview_ProductNotFound(t *testing.T) {
	svc, _, productRepo, _, _ := newTestReviewService(t)

	ctx := context.Background()
	user := &entity.User{ID: primitive.NewObjectID(), Name: "Alice"}
	req := &entity.UpsertReviewRequest{ProductID: "missing", Rating: 4, Comment: "nice"}

	productRepo.On("GetByID", ctx, "missing").Return(nil, repository.ErrProductNotFound)

	_, _, err := svc.UpsertReview(ctx, user, req)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpsertReview_InvalidatesCaches(t *testing.T) {
	svc, reviewRepo, productRepo, producer, mr := newTestReviewService(t)

	ctx := context.Background()
	user := &entity.User{ID: primitive.NewObjectID(), Name: "Alice"}
	req := &entity.UpsertReviewRequest{ProductID: "p1", Rating: 4, Comment: "solid"}

	// Рейтинг товара меняется, устаревает и кеш товаров, и отзывы
	require.NoError(t, mr.Set(cache.ProductKey("p1"), "stale"))
	require.NoError(t, mr.Set(cache.ReviewsKey("p1"), "stale"))
	require.NoError(t, mr.Set(cache.KeyAllProducts, "stale"))
	require.NoError(t, mr.Set(cache.KeyAdminStats, "stale"))

	productRepo.On("GetByID", ctx, "p1").Return(&entity.Product{Name: "Widget"}, nil)
	reviewRepo.On("Upsert", ctx, mock.Anything).Return(true, nil)
	reviewRepo.On("GetByProductID", ctx, "p1").Return([]entity.Review{{Rating: 4}}, nil)
	productRepo.On("UpdateRatings", ctx, "p1", 4.0, 1).Return(nil)
	producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	_, _, err := svc.UpsertReview(ctx, user, req)
	require.NoError(t, err)

	assert.False(t, mr.Exists(cache.ProductKey("p1")))
	assert.False(t, mr.Exists(cache.ReviewsKey("p1")))
	assert.False(t, mr.Exists(cache.KeyAllProducts))
	assert.False(t, mr.Exists(cache.KeyAdminStats))
}

// ===================== DeleteReview Tests =====================

func TestDeleteReview_Success(t *testing.T) {
	svc, reviewRepo, productRepo, producer, _ := newTestReviewService(t)

	ctx := context.Background()
	review := &entity.Review{ID: primitive.NewObjectID(), ProductID: "p1", UserID: "u1", Rating: 5}

	reviewRepo.On("GetByID", ctx, review.ID.Hex()).Return(review, nil)
	reviewRepo.On("Delete", ctx, review.ID.Hex()).Return(nil)
	// Последний отзыв удален - агрегат обнуляется
	reviewRepo.On("GetByProductID", ctx, "p1").Return([]entity.Review{}, nil)
	productRepo.On("UpdateRatings", ctx, "p1", 0.0, 0).Return(nil)
	producer.On("PublishMessage", ctx, mock.Anything, mock.Anything).Return(nil)

	err := svc.DeleteReview(ctx, review.ID.Hex(), "u1")

	require.NoError(t, err)
	productRepo.AssertCalled(t, "UpdateRatings", ctx, "p1", 0.0, 0)
}

func TestDeleteReview_NotOwner(t *testing.T) {
	svc, reviewRepo, _, _, _ := newTestReviewService(t)

	ctx := context.Background()
	review := &entity.Review{ID: primitive.NewObjectID(), ProductID: "p1", UserID: "u1"}

	reviewRepo.On("GetByID", ctx, review.ID.Hex()).Return(review, nil)

	err := svc.DeleteReview(ctx, review.ID.Hex(), "someone-else")

	assert.ErrorIs(t, err, ErrNotReviewOwner)
	reviewRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteReview_NotFound(t *testing.T) {
	svc, reviewRepo, _, _, _ := newTestReviewService(t)

	ctx := context.Background()
	reviewRepo.On("GetByID", ctx, "missing").Return(nil, repository.ErrReviewNotFound)

	err := svc.DeleteReview(ctx, "missing", "u1")

	assert.ErrorIs(t, err, ErrReviewNotFound)
}

// ===================== GetProductReviews Tests =====================

func TestGetProductReviews_CachesResult(t *testing.T) {
	svc, reviewRepo, _, _, _ := newTestReviewService(t)

	ctx := context.Background()
	reviews := []entity.Review{{ProductID: "p1", Rating: 5, Comment: "great"}}

	reviewRepo.On("GetByProductID", ctx, "p1").Return(reviews, nil).Once()

	first, err := svc.GetProductReviews(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, first, 1)

	// Второе чтение обслуживается из кеша, репозиторий не трогаем
	second, err := svc.GetProductReviews(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	reviewRepo.AssertNumberOfCalls(t, "GetByProductID", 1)
}
