package handler

import (
	"net/http"

	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/service"
	"junomarket/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// OrderHandler обрабатывает HTTP-запросы заказов
type OrderHandler struct {
	orderService service.OrderServiceInterface
	validator    *validator.Validate
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(orderService service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

// CreateOrder обрабатывает POST /orders
// Заказ привязывается к аутентифицированному пользователю
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Please login to access this resource")
		return
	}

	var req entity.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), user.ID.Hex(), &req)
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Ошибка создания заказа")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.OrderResponse{
		Success: true,
		Order:   order,
	})
}

// GetMyOrders обрабатывает GET /orders/my
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Please login to access this resource")
		return
	}

	orders, err := h.orderService.GetMyOrders(c.Request.Context(), user.ID.Hex())
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("Ошибка получения заказов пользователя")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.OrderListResponse{
		Success: true,
		Orders:  orders,
		Total:   len(orders),
	})
}

// GetAllOrders обрабатывает GET /orders/all (только админ)
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	orders, err := h.orderService.GetAllOrders(c.Request.Context())
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка получения всех заказов")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.OrderListResponse{
		Success: true,
		Orders:  orders,
		Total:   len(orders),
	})
}

// GetOrder обрабатывает GET /orders/:id
// Чужой заказ доступен только админу
func (h *OrderHandler) GetOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Please login to access this resource")
		return
	}

	id := c.Param("id")

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if order.UserID != user.ID.Hex() && user.Role != "admin" {
		respondError(c, http.StatusForbidden, "You can view only your own orders")
		return
	}

	c.JSON(http.StatusOK, entity.OrderResponse{
		Success: true,
		Order:   order,
	})
}

// ProcessOrder обрабатывает PUT /orders/:id (только админ)
// Переводит заказ на следующий статус: Processing -> Shipped -> Delivered
func (h *OrderHandler) ProcessOrder(c *gin.Context) {
	id := c.Param("id")

	order, err := h.orderService.ProcessOrder(c.Request.Context(), id)
	if err != nil {
		logger.Error().Err(err).Str("order_id", id).Msg("Ошибка обработки заказа")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.OrderResponse{
		Success: true,
		Order:   order,
	})
}

// DeleteOrder обрабатывает DELETE /orders/:id (только админ)
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id := c.Param("id")

	if err := h.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		logger.Error().Err(err).Str("order_id", id).Msg("Ошибка удаления заказа")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{
		Success: true,
		Message: "Order deleted successfully",
	})
}
