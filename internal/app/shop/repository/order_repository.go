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

type orderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository создает новый репозиторий заказов
// Автоматически создает индекс по user_id для выборки "мои заказы"
func NewOrderRepository(db *mongo.Database) OrderRepository {
	collection := db.Collection("orders")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetName("user_id_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn().Err(err).Msg("Failed to create order index")
	}

	return &orderRepository{collection: collection}
}

// Create создает новый заказ в MongoDB
func (r *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "orders")
	defer timer.ObserveDuration()

	order.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}

	return nil
}

// GetByID получает заказ по ID
func (r *orderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "orders")
	defer timer.ObserveDuration()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	var order entity.Order
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

// GetByUserID получает все заказы пользователя, новые первыми
// Использует индекс user_id_idx
func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Order, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "orders")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []entity.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

// GetAll получает все заказы, новые первыми
func (r *orderRepository) GetAll(ctx context.Context) ([]entity.Order, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "orders")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []entity.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus обновляет статус заказа
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "orders")
	defer timer.ObserveDuration()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrOrderNotFound
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Delete удаляет заказ
func (r *orderRepository) Delete(ctx context.Context, id string) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpDelete, "orders")
	defer timer.ObserveDuration()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrOrderNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpDelete)
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Count возвращает общее количество заказов
func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpCount, "orders")
	defer timer.ObserveDuration()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpCount)
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// CountByStatus возвращает количество заказов в каждом статусе
func (r *orderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpCount, "orders")
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpCount)
		return nil, fmt.Errorf("failed to aggregate order statuses: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
