package handler

import (
	"errors"
	"net/http"

	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/repository"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware идентифицирует пользователя по query-параметру id
// и проверяет роль для админских маршрутов
type AuthMiddleware struct {
	userRepo repository.UserRepository
}

// NewAuthMiddleware создает новый middleware для аутентификации
func NewAuthMiddleware(userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{userRepo: userRepo}
}

// Authenticate находит пользователя по ?id= и кладет его в контекст Gin
// Без id или с неизвестным id запрос отклоняется с 401
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{
				Success: false,
				Message: "Please login to access this resource",
			})
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{
					Success: false,
					Message: "Please login to access this resource",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, entity.ErrorResponse{
				Success: false,
				Message: "Failed to verify user",
			})
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID.Hex())

		c.Next()
	}
}

// RequireAdmin пропускает дальше только пользователей с ролью admin
// Должен стоять после Authenticate
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := currentUser(c)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.ErrorResponse{
				Success: false,
				Message: "Please login to access this resource",
			})
			return
		}

		if user.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.ErrorResponse{
				Success: false,
				Message: "Only admin can access this resource",
			})
			return
		}

		c.Next()
	}
}

// currentUser достает аутентифицированного пользователя из контекста Gin
func currentUser(c *gin.Context) (*entity.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}

	user, ok := value.(*entity.User)
	return user, ok
}
