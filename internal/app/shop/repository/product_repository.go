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

const serviceName = "shop-service"

type productRepository struct {
	collection *mongo.Collection
}

// NewProductRepository создает новый репозиторий товаров
// Автоматически создает индексы по category и created_at
func NewProductRepository(db *mongo.Database) ProductRepository {
	collection := db.Collection("products")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "category", Value: 1}},
			Options: options.Index().SetName("category_idx"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Индексы могут уже существовать - не прерываем работу
		logger.Warn().Err(err).Msg("Failed to create product indexes")
	}

	return &productRepository{collection: collection}
}

// Create создает новый товар в MongoDB
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpInsert, "products")
	defer timer.ObserveDuration()

	product.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpInsert)
		return fmt.Errorf("failed to create product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}

	return nil
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "products")
	defer timer.ObserveDuration()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	var product entity.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// GetAll получает все товары, новые первыми
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "products")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// GetLatest получает последние добавленные товары
// Использует индекс created_at_idx
func (r *productRepository) GetLatest(ctx context.Context, limit int) ([]entity.Product, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "products")
	defer timer.ObserveDuration()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to find latest products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// GetCategories получает список уникальных категорий
func (r *productRepository) GetCategories(ctx context.Context) ([]string, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "products")
	defer timer.ObserveDuration()

	values, err := r.collection.Distinct(ctx, "category", bson.M{})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}

	return categories, nil
}

// Search выполняет поиск товаров с фильтрами, сортировкой и пагинацией
// Поиск по имени - регистронезависимый префиксный regex
func (r *productRepository) Search(ctx context.Context, req *entity.SearchProductsRequest, pageSize int) ([]entity.Product, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpFind, "products")
	defer timer.ObserveDuration()

	filter := bson.M{}
	if req.Search != "" {
		filter["name"] = bson.M{"$regex": req.Search, "$options": "i"}
	}
	if req.Category != "" {
		filter["category"] = req.Category
	}
	if req.Price > 0 {
		filter["price"] = bson.M{"$lte": req.Price}
	}

	sort := bson.D{{Key: "created_at", Value: -1}}
	switch req.Sort {
	case "asc":
		sort = bson.D{{Key: "price", Value: 1}}
	case "desc":
		sort = bson.D{{Key: "price", Value: -1}}
	}

	page := req.Page
	if page < 1 {
		page = 1
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpFind)
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []entity.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// Update обновляет поля товара
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "products")
	defer timer.ObserveDuration()

	update := bson.M{
		"$set": bson.M{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"stock":       product.Stock,
			"category":    product.Category,
			"photos":      product.Photos,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// UpdateRatings сохраняет пересчитанный агрегат отзывов товара
func (r *productRepository) UpdateRatings(ctx context.Context, id string, ratings float64, numOfReviews int) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "products")
	defer timer.ObserveDuration()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrProductNotFound
	}

	update := bson.M{
		"$set": bson.M{
			"ratings":        ratings,
			"num_of_reviews": numOfReviews,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to update product ratings: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// AdjustStock атомарно изменяет остаток товара на delta
// При отрицательной delta требует достаточного остатка, иначе ErrOutOfStock
func (r *productRepository) AdjustStock(ctx context.Context, id string, delta int) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpUpdate, "products")
	defer timer.ObserveDuration()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrProductNotFound
	}

	filter := bson.M{"_id": objectID}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"stock": delta}})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpUpdate)
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	if result.MatchedCount == 0 {
		// Либо товара нет, либо остатка не хватает
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return ErrProductNotFound
		}
		return ErrOutOfStock
	}

	return nil
}

// Delete удаляет товар
func (r *productRepository) Delete(ctx context.Context, id string) error {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpDelete, "products")
	defer timer.ObserveDuration()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrProductNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpDelete)
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Count возвращает общее количество товаров
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpCount, "products")
	defer timer.ObserveDuration()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpCount)
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// CountOutOfStock возвращает количество товаров с нулевым остатком
func (r *productRepository) CountOutOfStock(ctx context.Context) (int64, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpCount, "products")
	defer timer.ObserveDuration()

	count, err := r.collection.CountDocuments(ctx, bson.M{"stock": bson.M{"$lte": 0}})
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpCount)
		return 0, fmt.Errorf("failed to count out-of-stock products: %w", err)
	}
	return count, nil
}

// CountByCategory возвращает количество товаров в каждой категории
func (r *productRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	timer := metrics.NewMongoTimer(serviceName, metrics.MongoOpCount, "products")
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		metrics.RecordMongoError(serviceName, metrics.MongoOpCount)
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
		Count    int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode category counts: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}

	return counts, nil
}
