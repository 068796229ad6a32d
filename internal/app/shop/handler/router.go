package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"junomarket/pkg/logger"
	"junomarket/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(
	productHandler *ProductHandler,
	orderHandler *OrderHandler,
	reviewHandler *ReviewHandler,
	statsHandler *StatsHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("shop-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "shop-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Каталог: чтение публичное, изменения только для админа
	products := router.Group("/products")
	{
		products.GET("", productHandler.SearchProducts)
		products.GET("/latest", productHandler.GetLatestProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/:id", productHandler.GetProduct)

		products.GET("/admin",
			authMiddleware.Authenticate(),
			authMiddleware.RequireAdmin(),
			productHandler.GetAdminProducts,
		)

		adminProducts := products.Group("")
		adminProducts.Use(authMiddleware.Authenticate())
		adminProducts.Use(authMiddleware.RequireAdmin())
		{
			adminProducts.POST("", productHandler.CreateProduct)
			adminProducts.PUT("/:id", productHandler.UpdateProduct)
			adminProducts.DELETE("/:id", productHandler.DeleteProduct)
		}
	}

	// Заказы: все маршруты требуют аутентификации
	orders := router.Group("/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("/my", orderHandler.GetMyOrders)
		orders.GET("/:id", orderHandler.GetOrder)

		orders.GET("/all", authMiddleware.RequireAdmin(), orderHandler.GetAllOrders)
		orders.PUT("/:id", authMiddleware.RequireAdmin(), orderHandler.ProcessOrder)
		orders.DELETE("/:id", authMiddleware.RequireAdmin(), orderHandler.DeleteOrder)
	}

	// Отзывы: чтение публичное, запись для авторизованных
	reviews := router.Group("/reviews")
	{
		reviews.GET("/:product_id", reviewHandler.GetProductReviews)
		reviews.POST("", authMiddleware.Authenticate(), reviewHandler.UpsertReview)
		reviews.DELETE("/:id", authMiddleware.Authenticate(), reviewHandler.DeleteReview)
	}

	// Админская панель
	admin := router.Group("/admin")
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireAdmin())
	{
		admin.GET("/stats", statsHandler.GetDashboardStats)
	}

	return router
}
