package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"junomarket/pkg/logger"
	"junomarket/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const serviceName = "shop-service"

// Client обертка над Redis для read-through кеширования
// Кеш никогда не является источником истины: любая ошибка Redis
// деградирует до прямого чтения из MongoDB
type Client struct {
	rdb *redis.Client
}

// NewClient создает новый клиент Redis и проверяет соединение
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewClientWithRedis оборачивает готовый redis.Client
// Используется в тестах с miniredis
func NewClientWithRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Get возвращает значение ключа
// Второй результат false означает промах кеша
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, false, fmt.Errorf("failed to get key %q: %w", key, err)
	}

	return data, true, nil
}

// Set сохраняет значение под ключом с TTL
func (c *Client) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}

	return nil
}

// Delete удаляет ключи, возвращает количество удаленных
func (c *Client) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	deleted, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return 0, fmt.Errorf("failed to delete keys: %w", err)
	}

	return deleted, nil
}

// Close закрывает соединение с Redis
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Fetch реализует read-through доступ к кешу:
// попадание - десериализуем и возвращаем кешированное значение,
// промах - вычисляем через compute, кешируем результат с TTL и возвращаем.
// Ошибки Redis не фатальны: логируются, и запрос обслуживается напрямую
// через compute
func Fetch[T any](ctx context.Context, c *Client, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	prefix := KeyPrefix(key)

	data, found, err := c.Get(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, bypassing cache")
	}
	if found {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			metrics.RecordCacheHit(serviceName, prefix)
			return value, nil
		}
		// Нечитаемая запись равносильна промаху
		logger.Warn().Str("key", key).Msg("Cache entry is not valid JSON, recomputing")
	}

	metrics.RecordCacheMiss(serviceName, prefix)

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	data, err = json.Marshal(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to marshal value for cache")
		return value, nil
	}

	if err := c.Set(ctx, key, data, ttl); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}

	return value, nil
}
