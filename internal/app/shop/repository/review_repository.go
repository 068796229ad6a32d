package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"junomarket/internal/app/shop/entity"
	"junomarket/pkg/logger"
	"junomarket/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает новый репозиторий отзывов
// Уникальный составной индекс (product_id, user_id) разрешает гонку
// двух одновременных первых отзывов одной пары пользователь-товар
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection("reviews")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "product_id", Value: 1},
			{Key: "user_id", Value: 1},
		},
		Options: options.Index().SetName("product_user_idx").SetUnique(true),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Msg("Failed to create review index")
	}

	return &reviewRepository{collection: collection}
}

// Upsert создает отзыв или обновляет существующий отзыв
// той же пары (user_id, product_id). Возвращает true при создании
func (r *reviewRepository) Upsert(ctx context.Context, review *entity.Review) (bool, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "reviews")
	defer timer.ObserveDuration()

	now := time.Now()
	review.UpdatedAt = now

	filter := bson.M{
		"product_id": review.ProductID,
		"user_id":    review.UserID,
	}
	update := bson.M{
		"$set": bson.M{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"user_name":  review.UserName,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"product_id": review.ProductID,
			"user_id":    review.UserID,
			"created_at": now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return false, fmt.Errorf("failed to upsert review: %w", err)
	}

	if result.UpsertedCount > 0 {
		if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
			review.ID = oid
		}
		review.CreatedAt = now
		return true, nil
	}

	// Отзыв уже существовал - подтягиваем его ID и created_at
	var existing entity.Review
	if err := r.collection.FindOne(ctx, filter).Decode(&existing); err == nil {
		review.ID = existing.ID
		review.CreatedAt = existing.CreatedAt
	}

	return false, nil
}

// GetByID получает отзыв по ID
func (r *reviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "reviews")
	defer timer.ObserveDuration()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrReviewNotFound
	}

	var review entity.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &review, nil
}

// GetByProductID получает все отзывы товара, новые первыми
func (r *reviewRepository) GetByProductID(ctx context.Context, productID string) ([]entity.Review, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "reviews")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []entity.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

// Delete удаляет отзыв
func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpDelete, "reviews")
	defer timer.ObserveDuration()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrReviewNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpDelete)
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Count возвращает общее количество отзывов
func (r *reviewRepository) Count(ctx context.Context) (int64, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpCount, "reviews")
	defer timer.ObserveDuration()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpCount)
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}
