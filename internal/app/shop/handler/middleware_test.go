package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"junomarket/internal/app/shop/entity"
	"junomarket/internal/app/shop/repository"
	"junomarket/internal/app/shop/repository/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) entity.ErrorResponse {
	t.Helper()

	var resp entity.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthenticate_NoID(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	middleware := NewAuthMiddleware(userRepo)

	router := setupTestRouter()
	router.GET("/protected", middleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(router, http.MethodGet, "/protected")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	assert.False(t, resp.Success)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAuthenticate_UnknownID(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	userRepo.On("GetByID", mock.Anything, "ghost").Return(nil, repository.ErrUserNotFound)

	middleware := NewAuthMiddleware(userRepo)

	router := setupTestRouter()
	router.GET("/protected", middleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(router, http.MethodGet, "/protected?id=ghost")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_SetsUserInContext(t *testing.T) {
	user := &entity.User{ID: primitive.NewObjectID(), Name: "Alice", Role: "user"}

	userRepo := new(mocks.MockUserRepository)
	userRepo.On("GetByID", mock.Anything, user.ID.Hex()).Return(user, nil)

	middleware := NewAuthMiddleware(userRepo)

	router := setupTestRouter()
	router.GET("/protected", middleware.Authenticate(), func(c *gin.Context) {
		got, exists := currentUser(c)
		require.True(t, exists)
		assert.Equal(t, "Alice", got.Name)
		c.Status(http.StatusOK)
	})

	w := performRequest(router, http.MethodGet, "/protected?id="+user.ID.Hex())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_RegularUserForbidden(t *testing.T) {
	user := &entity.User{ID: primitive.NewObjectID(), Name: "Bob", Role: "user"}

	userRepo := new(mocks.MockUserRepository)
	userRepo.On("GetByID", mock.Anything, user.ID.Hex()).Return(user, nil)

	middleware := NewAuthMiddleware(userRepo)

	router := setupTestRouter()
	router.GET("/admin-only", middleware.Authenticate(), middleware.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(router, http.MethodGet, "/admin-only?id="+user.ID.Hex())

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_AdminAllowed(t *testing.T) {
	admin := &entity.User{ID: primitive.NewObjectID(), Name: "Root", Role: "admin"}

	userRepo := new(mocks.MockUserRepository)
	userRepo.On("GetByID", mock.Anything, admin.ID.Hex()).Return(admin, nil)

	middleware := NewAuthMiddleware(userRepo)

	router := setupTestRouter()
	router.GET("/admin-only", middleware.Authenticate(), middleware.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(router, http.MethodGet, "/admin-only?id="+admin.ID.Hex())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_WithoutAuthenticate(t *testing.T) {
	userRepo := new(mocks.MockUserRepository)
	middleware := NewAuthMiddleware(userRepo)

	router := setupTestRouter()
	// RequireAdmin без Authenticate не должен пускать дальше
	router.GET("/admin-only", middleware.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := performRequest(router, http.MethodGet, "/admin-only")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
