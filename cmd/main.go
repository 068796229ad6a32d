package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"junomarket/internal/app/shop/cache"
	"junomarket/internal/app/shop/config"
	"junomarket/internal/app/shop/handler"
	"junomarket/internal/app/shop/infrastructure/messaging"
	"junomarket/internal/app/shop/infrastructure/storage"
	"junomarket/internal/app/shop/processor"
	"junomarket/internal/app/shop/repository"
	"junomarket/internal/app/shop/service"
	"junomarket/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("shop-service", logLevel)

	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().
		Str("database", cfg.MongoDB.Database).
		Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	cacheClient, err := cache.NewClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer cacheClient.Close()
	logger.Info().
		Str("address", cfg.Redis.Address()).
		Msg("Connected to Redis")

	invalidator := cache.NewInvalidator(cacheClient)

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	imageStore := storage.NewImageClient(cfg.ImageHost.BaseURL, cfg.ImageHost.APIKey)

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(db)

	productService := service.NewProductService(
		productRepo, cacheClient, invalidator, imageStore, kafkaProducer,
		cfg.Cache.DefaultTTL, cfg.Cache.ListTTL,
	)
	orderService := service.NewOrderService(
		orderRepo, productRepo, cacheClient, invalidator, kafkaProducer,
		cfg.Cache.DefaultTTL,
	)
	reviewService := service.NewReviewService(
		reviewRepo, productRepo, cacheClient, invalidator, kafkaProducer,
		cfg.Cache.DefaultTTL,
	)
	statsService := service.NewStatsService(
		productRepo, orderRepo, reviewRepo, userRepo, cacheClient,
		cfg.Cache.DefaultTTL,
	)

	authMiddleware := handler.NewAuthMiddleware(userRepo)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	statsHandler := handler.NewStatsHandler(statsService)

	router := handler.SetupRoutes(productHandler, orderHandler, reviewHandler, statsHandler, authMiddleware)

	warmerCtx, warmerCancel := context.WithCancel(context.Background())
	defer warmerCancel()

	cacheWarmer := processor.NewCacheWarmer(productService)
	if err := cacheWarmer.Start(warmerCtx, cfg.Cache.WarmupSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cache warmer")
	}
	defer cacheWarmer.Stop()

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Shop Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Shop Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Shop Service stopped gracefully")
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err = mongo.Connect(ctx, clientOptions)
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pingCancel()

			if err = client.Ping(pingCtx, nil); err == nil {
				return client, nil
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
