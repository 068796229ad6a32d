package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config содержит все настройки приложения Shop Service
// Включает конфигурацию для HTTP сервера, MongoDB, Redis, Kafka и внешнего
// сервиса хранения изображений
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Cache     CacheConfig
	ImageHost ImageHostConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

// MongoDBConfig - настройки подключения к MongoDB
// Используется для хранения товаров, заказов, отзывов и пользователей
type MongoDBConfig struct {
	URI      string // URI подключения к MongoDB
	Database string // Имя базы данных
}

// RedisConfig - настройки подключения к Redis
// Используется как read-through кеш поверх MongoDB
type RedisConfig struct {
	Host     string // Хост Redis
	Port     string // Порт Redis
	Password string // Пароль Redis (опционально)
	DB       int    // Номер БД Redis (0-15)
}

// KafkaConfig - настройки Kafka для отправки событий
// События отправляются при изменении товаров, заказов и отзывов
type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (формат: host:port)
	Topic   string   // Топик для событий PRODUCT_*, ORDER_*, REVIEW_*
}

// CacheConfig - параметры кеширования
// Списки товаров с произвольными фильтрами не инвалидируются точечно,
// вместо этого живут с коротким TTL
type CacheConfig struct {
	DefaultTTL     time.Duration // TTL для ключей с точной инвалидацией
	ListTTL        time.Duration // Короткий TTL для фильтрованных списков товаров
	WarmupSchedule string        // Cron-расписание прогрева горячих ключей
}

// ImageHostConfig - настройки внешнего сервиса хранения изображений
type ImageHostConfig struct {
	BaseURL string // Базовый URL сервиса изображений
	APIKey  string // Ключ доступа к API
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	defaultTTL, err := time.ParseDuration(getEnv("CACHE_DEFAULT_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_DEFAULT_TTL value: %w", err)
	}

	listTTL, err := time.ParseDuration(getEnv("CACHE_LIST_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_LIST_TTL value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "junomarket"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "shop_events"),
		},
		Cache: CacheConfig{
			DefaultTTL:     defaultTTL,
			ListTTL:        listTTL,
			WarmupSchedule: getEnv("CACHE_WARMUP_SCHEDULE", "@every 10m"),
		},
		ImageHost: ImageHostConfig{
			BaseURL: getEnv("IMAGE_HOST_URL", "http://localhost:9000"),
			APIKey:  getEnv("IMAGE_HOST_API_KEY", ""),
		},
	}, nil
}

// Address возвращает адрес сервера в формате host:port для HTTP сервера
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port для подключения
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
