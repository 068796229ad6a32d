package repository

import (
	"context"
	"errors"
	"fmt"

	"junomarket/internal/app/shop/entity"
	"junomarket/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepository struct {
	collection *mongo.Collection
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{collection: db.Collection("users")}
}

// GetByID получает пользователя по ID
// Используется middleware для аутентификации и проверки роли
func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "users")
	defer timer.ObserveDuration()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var user entity.User
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// Count возвращает общее количество пользователей
func (r *userRepository) Count(ctx context.Context) (int64, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpCount, "users")
	defer timer.ObserveDuration()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpCount)
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
