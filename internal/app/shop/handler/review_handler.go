package handler

import (
	"net/http"

	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/service"
	"junomarket/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ReviewHandler обрабатывает HTTP-запросы отзывов
type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

// NewReviewHandler создает новый обработчик отзывов
func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// GetProductReviews обрабатывает GET /reviews/:product_id
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID := c.Param("product_id")

	reviews, err := h.reviewService.GetProductReviews(c.Request.Context(), productID)
	if err != nil {
		logger.Error().Err(err).Str("product_id", productID).Msg("Ошибка получения отзывов")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ReviewListResponse{
		Success: true,
		Reviews: reviews,
		Total:   len(reviews),
	})
}

// UpsertReview обрабатывает POST /reviews
// Повторная отправка тем же пользователем обновляет его отзыв,
// рейтинг товара пересчитывается в обоих случаях
func (h *ReviewHandler) UpsertReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Please login to access this resource")
		return
	}

	var req entity.UpsertReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	_, created, err := h.reviewService.UpsertReview(c.Request.Context(), user, &req)
	if err != nil {
		logger.Error().Err(err).Str("product_id", req.ProductID).Msg("Ошибка сохранения отзыва")
		respondServiceError(c, err)
		return
	}

	message := "Review updated successfully"
	status := http.StatusOK
	if created {
		message = "Review added successfully"
		status = http.StatusCreated
	}

	c.JSON(status, entity.MessageResponse{
		Success: true,
		Message: message,
	})
}

// DeleteReview обрабатывает DELETE /reviews/:id
// Удалить можно только собственный отзыв
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Please login to access this resource")
		return
	}

	id := c.Param("id")

	if err := h.reviewService.DeleteReview(c.Request.Context(), id, user.ID.Hex()); err != nil {
		logger.Error().Err(err).Str("review_id", id).Msg("Ошибка удаления отзыва")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{
		Success: true,
		Message: "Review deleted successfully",
	})
}
