package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError отправляет единый формат ошибки {success:false, message}
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{
		Success: false,
		Message: message,
	})
}

// respondServiceError транслирует ошибки сервисного слоя в HTTP-статусы
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, service.ErrReviewNotFound):
		respondError(c, http.StatusNotFound, "Review not found")
	case errors.Is(err, service.ErrOutOfStock):
		respondError(c, http.StatusBadRequest, "Insufficient product stock")
	case errors.Is(err, service.ErrImageCount):
		respondError(c, http.StatusBadRequest, "Please provide from 1 to 5 product images")
	case errors.Is(err, service.ErrNotReviewOwner):
		respondError(c, http.StatusForbidden, "You can delete only your own reviews")
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// formatValidationError превращает ошибки валидатора в читаемое сообщение
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Invalid request data"
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("field %s is required", fieldErr.Field()))
		case "min":
			messages = append(messages, fmt.Sprintf("field %s must be at least %s", fieldErr.Field(), fieldErr.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("field %s must be at most %s", fieldErr.Field(), fieldErr.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("field %s must be one of: %s", fieldErr.Field(), fieldErr.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("field %s must be greater than %s", fieldErr.Field(), fieldErr.Param()))
		case "gte":
			messages = append(messages, fmt.Sprintf("field %s must be greater than or equal to %s", fieldErr.Field(), fieldErr.Param()))
		default:
			messages = append(messages, fmt.Sprintf("field %s is invalid", fieldErr.Field()))
		}
	}

	return strings.Join(messages, "; ")
}
